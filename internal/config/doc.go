// Package config loads the llmrecipes settings.
//
// Values are resolved in this order, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. an optional YAML file passed to [LoadFile]
//  3. environment variables, after .env files have been loaded with godotenv
//
// Recognised variables:
//
//	LLMRECIPES_PROVIDER           huggingface (default) or openai
//	OPENAI_API_KEY                OpenAI key
//	OPENAI_API_BASE_URL           https://api.openai.com/v1
//	OPENAI_MODEL                  gpt-4o-mini
//	OPENAI_EMBEDDING_MODEL        text-embedding-3-large
//	HUGGINGFACEHUB_ACCESS_TOKEN   Hugging Face token
//	HUGGINGFACE_BASE_URL          https://router.huggingface.co/v1
//	HUGGINGFACE_MODEL             meta-llama/Llama-3.1-8B-Instruct
//	HUGGINGFACE_EMBEDDING_MODEL   sentence-transformers/all-MiniLM-L6-v2
//	LLMRECIPES_TIMEOUT            60s (Go duration or whole seconds)
//	LLMRECIPES_MAX_RETRIES        2
//	LLMRECIPES_LOG_LEVEL          info (LOG_LEVEL is also read)
//	LLMRECIPES_LOG_FORMAT         text or json
package config
