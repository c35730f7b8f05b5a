package i18n

// tables holds the per-locale string tables. Russian and English carry the
// full set; the remaining selectable locales fall back to English in Text.
var tables = map[Locale]map[string]string{
	LocaleRU: {
		"cmd_newchat":   "Начать новый текстовый разговор",
		"cmd_image":     "Генерация изображений",
		"cmd_translate": "Перевод текста",
		"cmd_language":  "Изменить язык интерфейса",
		"cmd_help":      "Показать справку",

		"welcome":        "Привет! Я Terry - сборник моделей AI. Используй /newchat для начала нового разговора с текстовыми моделями или /image для генерации изображений.",
		"error_occurred": "Произошла ошибка: %s",

		"select_text_model":  "Выберите текстовую модель для разговора:",
		"select_image_model": "Выберите модель для генерации изображений:",
		"model_selected":     "Выбрана модель: %s",
		"send_image_prompt":  "Отправьте текстовый запрос для генерации изображения.",

		"select_model_for_next_image": "Для создания ещё одного изображения в групповом чате, пожалуйста, снова выберите модель используя команду /image",

		"system_prompt_question": "Хотите задать системный промпт?%s",
		"btn_set_system_prompt":  "Задать системный промпт",
		"btn_no_system_prompt":   "Без системного промпта",
		"send_system_prompt":     "Пожалуйста, отправьте свой системный промпт в следующем сообщении.",
		"system_prompt_set":      "Системный промпт установлен. Новый чат создан с моделью %s.\nОтправьте сообщение, чтобы начать разговор.",
		"chat_created_no_prompt": "Новый чат создан с моделью %s.\nСистемный промпт не установлен. Отправьте сообщение, чтобы начать разговор.",

		"vision_capability": "\n\nЭта модель поддерживает анализ изображений. Вы можете отправлять фото вместе с вопросами.",
		"no_vision_support": "Текущая модель не поддерживает анализ изображений. Выберите другую модель с поддержкой vision.",
		"image_received":    "Изображение получено. Теперь задайте вопрос или опишите, что вы хотите узнать об этом изображении.",
		"no_image_found":    "Не найдено изображение для анализа. Пожалуйста, отправьте изображение вместе с вопросом.",
		"image_error":       "Произошла ошибка при анализе изображения: %s",
		"generated_with":    "Сгенерировано с помощью %s",

		"translation_mode_activated":    "🌐 Перевод\n\nПожалуйста, укажите язык, на который нужно перевести текст (например, 'английский', 'немецкий', 'французский' и т.д.).",
		"translation_language_selected": "Язык перевода: %s.\n\nТеперь отправьте текст, который нужно перевести.",
		"translation_result":            "Перевод на %s:\n\n%s",
		"translation_error":             "Произошла ошибка при переводе: %s",

		"language_selection": "Выберите язык интерфейса бота:",
		"language_set":       "Язык интерфейса изменен на %s",

		"help_title":           "🤖 Terry\n\n",
		"help_features":        "• Общение с различными AI моделями\n• Генерация изображений\n• Анализ изображений (для поддерживаемых моделей)\n• Перевод текста\n\n",
		"help_instructions":    "1️⃣ Выберите модель через /newchat (для текста) или /image (для картинок)\n2️⃣ При выборе текстовой модели вы можете задать системный промпт или продолжить без него\n3️⃣ Отправляйте сообщения для общения с выбранной моделью\n4️⃣ Для моделей с поддержкой vision 👁 можно отправлять изображения с вопросами\n5️⃣ Используйте /translate для перевода текста\n6️⃣ Используйте /language для изменения языка интерфейса",
		"current_model":        "\n\n🤖 Текущая модель: %s",
		"current_model_vision": "\n✅ Эта модель поддерживает анализ изображений. Отправьте фото с вопросом.",

		"select_model_first": "Пожалуйста, выберите модель с помощью команды /newchat перед началом разговора.",

		"language_name_ru": "Русский",
		"language_name_en": "Английский",
		"language_name_de": "Немецкий",
		"language_name_fr": "Французский",
		"language_name_es": "Испанский",
		"language_name_it": "Итальянский",
	},

	LocaleEN: {
		"cmd_newchat":   "Start a new text conversation",
		"cmd_image":     "Generate images",
		"cmd_translate": "Translate text",
		"cmd_language":  "Change interface language",
		"cmd_help":      "Show help",

		"welcome":        "Hello! I'm Terry - a collection of AI models. Use /newchat to start a new conversation with text models or /image to generate images.",
		"error_occurred": "An error occurred: %s",

		"select_text_model":  "Choose a text model for the conversation:",
		"select_image_model": "Choose a model for image generation:",
		"model_selected":     "Selected model: %s",
		"send_image_prompt":  "Send a text prompt to generate an image.",

		"select_model_for_next_image": "To create another image in this group chat, please select a model again using the /image command",

		"system_prompt_question": "Do you want to set a system prompt?%s",
		"btn_set_system_prompt":  "Set a system prompt",
		"btn_no_system_prompt":   "No system prompt",
		"send_system_prompt":     "Please send your system prompt in the next message.",
		"system_prompt_set":      "System prompt set. A new chat has been created with model %s.\nSend a message to start the conversation.",
		"chat_created_no_prompt": "A new chat has been created with model %s.\nNo system prompt is set. Send a message to start the conversation.",

		"vision_capability": "\n\nThis model supports image analysis. You can send photos along with your questions.",
		"no_vision_support": "The current model does not support image analysis. Choose another model with vision support.",
		"image_received":    "Image received. Now ask a question or describe what you want to know about this image.",
		"no_image_found":    "No image found to analyze. Please send an image together with your question.",
		"image_error":       "An error occurred while analyzing the image: %s",
		"generated_with":    "Generated with %s",

		"translation_mode_activated":    "🌐 Translation\n\nPlease specify the language to translate the text into (for example, 'English', 'German', 'French', etc.).",
		"translation_language_selected": "Target language: %s.\n\nNow send the text you want to translate.",
		"translation_result":            "Translation into %s:\n\n%s",
		"translation_error":             "An error occurred during translation: %s",

		"language_selection": "Choose the bot interface language:",
		"language_set":       "Interface language changed to %s",

		"help_title":           "🤖 Terry\n\n",
		"help_features":        "• Chat with various AI models\n• Image generation\n• Image analysis (for supported models)\n• Text translation\n\n",
		"help_instructions":    "1️⃣ Choose a model via /newchat (for text) or /image (for pictures)\n2️⃣ When choosing a text model you can set a system prompt or continue without one\n3️⃣ Send messages to chat with the selected model\n4️⃣ Models with vision support 👁 accept images with questions\n5️⃣ Use /translate to translate text\n6️⃣ Use /language to change the interface language",
		"current_model":        "\n\n🤖 Current model: %s",
		"current_model_vision": "\n✅ This model supports image analysis. Send a photo with your question.",

		"select_model_first": "Please choose a model with the /newchat command before starting a conversation.",

		"language_name_ru": "Russian",
		"language_name_en": "English",
		"language_name_de": "German",
		"language_name_fr": "French",
		"language_name_es": "Spanish",
		"language_name_it": "Italian",
	},
}
