package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxBodyMB    int

	// data inputs/outputs for process mode
	ConsolidadoPath string
	RulesPath       string
	WMIPath         string
	DBPath          string

	// lower bound for model years admitted into aggregation
	MinModelYear int

	// strict check-digit validation for VINs. Off by default: a large share
	// of real-world VINs fail it while still carrying usable maker/series info.
	VINCheckDigit bool
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_BODY_MB", "8"))
	minYear, _ := strconv.Atoi(getenv("MIN_MODEL_YEAR", "1990"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:            getenv("HOST", "127.0.0.1"),
		Port:            port,
		AllowOrigins:    origins,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFile:         getenv("LOG_FILE", "logs/sku-service.log"),
		MaxBodyMB:       mb,
		ConsolidadoPath: getenv("CONSOLIDADO_PATH", "Source_Files/Consolidado.json"),
		RulesPath:       getenv("RULES_PATH", "Source_Files/Text_Processing_Rules.xlsx"),
		WMIPath:         getenv("WMI_PATH", "Source_Files/WMI.csv"),
		DBPath:          getenv("DB_PATH", "Source_Files/processed_consolidado.db"),
		MinModelYear:    minYear,
		VINCheckDigit:   toBool(getenv("VIN_CHECK_DIGIT", "false")),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func toBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
