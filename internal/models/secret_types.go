package models

// Secret family names, as stored in Finding.SecretType
const (
	SecretTypeAWSAccessKeys     = "AWS Access & Secret Keys"
	SecretTypeAWSSessionKeys    = "AWS Session Keys"
	SecretTypeAnthropic         = "Anthropic"
	SecretTypeOpenAI            = "OpenAI"
	SecretTypeGCPServiceAccount = "Google Cloud Service Account"
	SecretTypeSlack             = "Slack"
	SecretTypeHuggingFace       = "Hugging Face"
	SecretTypeGemini            = "Gemini"
	SecretTypeGroq              = "Groq"
	SecretTypeDeepSeek          = "DeepSeek"
	SecretTypeTelegram          = "Telegram Bot Token"
	SecretTypeMailgun           = "Mailgun"
	SecretTypeMailchimp         = "Mailchimp"
	SecretTypeGitHub            = "GitHub"
	SecretTypeStripe            = "Stripe"
	SecretTypePayPal            = "PayPal OAuth"
)
