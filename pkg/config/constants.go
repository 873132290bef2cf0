package config

const (
	EnvPrefix = "SHOPSTATE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
