package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port string `env:"REI_SERVER_PORT" envDefault:"5250"`
	}

	// Storage paths
	Paths struct {
		// SQLite database file
		DatabasePath string `env:"REI_DB_PATH" envDefault:"data/insights.db"`

		// Directory the inventory fetcher drops exported CSV files into
		InventoryDir string `env:"REI_INVENTORY_DIR" envDefault:"data/inventory"`

		// Directory holding per-property supporting documents (<id>.pdf)
		DocumentDir string `env:"REI_PDF_DIR" envDefault:"data/documents"`

		// Directory gap artifacts are written to
		ReportDir string `env:"REI_REPORT_DIR" envDefault:"data/reports"`
	}

	// Ingestion configuration
	Ingestion struct {
		// Minutes between automatic inventory scans
		ScanIntervalMinutes int `env:"REI_SCAN_INTERVAL" envDefault:"360"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of properties to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Queue buffer size in batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"64"`
	}

	// DefaultFilters seeds the dashboard search form
	DefaultFilters struct {
		MinPrice      float64 `env:"REI_FILTER_MIN_PRICE" envDefault:"1500000"`
		MaxPrice      float64 `env:"REI_FILTER_MAX_PRICE" envDefault:"3500000"`
		MinCommission float64 `env:"REI_FILTER_MIN_COMMISSION" envDefault:"3"`
		MinBedrooms   int     `env:"REI_FILTER_MIN_BEDROOMS" envDefault:"2"`
		MinBathrooms  float64 `env:"REI_FILTER_MIN_BATHROOMS" envDefault:"1"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
