package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "KBSYNC_CONFIG"

	databaseDSNEnv        = "DATABASE_DSN"
	databaseCollectionEnv = "DATABASE_COLLECTION"
	bucketEnv             = "S3_BUCKET_NAME"
	tenantEnv             = "TENANT_NAME"
	storeEndpointEnv      = "S3_ENDPOINT"
	storeAccessKeyEnv     = "S3_ACCESS_KEY"
	storeSecretKeyEnv     = "S3_SECRET_KEY"
	tokenURLEnv           = "TOKEN_URL"
	articlesURLEnv        = "ARTICLES_URL"
	clientIDEnv           = "CLIENT_ID"
	clientSecretEnv       = "CLIENT_SECRET"
	redirectURIEnv        = "REDIRECT_URI"
	refreshTokenEnv       = "REFRESH_TOKEN"
	orgIDEnv              = "ORG_ID"
	departmentIDEnv       = "DEPARTMENT_ID"
	categoryIDEnv         = "CATEGORY_ID"
	permissionsEnv        = "PERMISSIONS"
	openAIAPIKeyEnv       = "OPENAI_API_KEY"
	openAIModelEnv        = "OPENAI_MODEL"
	embeddingModelEnv     = "EMBEDDING_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Zoho        ZohoConfig        `yaml:"zoho"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
	Database    DatabaseConfig    `yaml:"database"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Sync        SyncConfig        `yaml:"sync"`
	Push        PushConfig        `yaml:"push"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ZohoConfig wires the help-desk API credentials and scope filters.
type ZohoConfig struct {
	TokenURL     string `yaml:"tokenUrl"`
	ArticlesURL  string `yaml:"articlesUrl"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURI  string `yaml:"redirectUri"`
	RefreshToken string `yaml:"refreshToken"`
	OrgID        string `yaml:"orgId"`
	DepartmentID string `yaml:"departmentId"`
	CategoryID   string `yaml:"categoryId"`
	Permission   string `yaml:"permission"`
}

// ObjectStoreConfig describes the S3-compatible store holding stage files
// and snapshots.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
	Tenant    string `yaml:"tenant"`
}

// StoragePrefix is the per-tenant key prefix all pipeline objects live under.
func (o ObjectStoreConfig) StoragePrefix() string {
	return o.Tenant + "/zohodesk-data"
}

// DatabaseConfig describes the pgvector connection details.
type DatabaseConfig struct {
	DSN        string `yaml:"dsn"`
	Collection string `yaml:"collection"`
}

// OpenAIConfig defines the models used for keyword generation and embedding.
type OpenAIConfig struct {
	APIKey         string `yaml:"apiKey"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embeddingModel"`
	MaxKeywords    int    `yaml:"maxKeywords"`
}

// SyncConfig controls snapshot retention.
type SyncConfig struct {
	SnapshotRetention int `yaml:"snapshotRetention"`
}

// PushConfig bounds the bulk article-creation fan-out.
type PushConfig struct {
	MaxConcurrent  int           `yaml:"maxConcurrent"`
	PacingInterval time.Duration `yaml:"pacingInterval"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	BackoffFactor  float64       `yaml:"backoffFactor"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports the settings a stage cannot run without.
func (c Config) Validate(stage string) error {
	needsZoho := stage == "fetch" || stage == "push" || stage == "all"
	needsStore := stage != "" // every stage moves data through the object store
	needsOpenAI := stage == "enrich" || stage == "upload" || stage == "all"
	needsDatabase := stage == "upload" || stage == "all"

	if needsZoho {
		if c.Zoho.ClientID == "" || c.Zoho.ClientSecret == "" || c.Zoho.RefreshToken == "" {
			return fmt.Errorf("stage %s requires zoho credentials", stage)
		}
		if c.Zoho.DepartmentID == "" || c.Zoho.CategoryID == "" {
			return fmt.Errorf("stage %s requires zoho department and category ids", stage)
		}
	}
	if needsStore {
		if c.ObjectStore.Endpoint == "" || c.ObjectStore.Bucket == "" || c.ObjectStore.Tenant == "" {
			return fmt.Errorf("stage %s requires object store endpoint, bucket and tenant", stage)
		}
	}
	if needsOpenAI && c.OpenAI.APIKey == "" {
		return fmt.Errorf("stage %s requires an OpenAI api key", stage)
	}
	if needsDatabase && c.Database.DSN == "" {
		return fmt.Errorf("stage %s requires a database dsn", stage)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.Database.DSN, databaseDSNEnv)
	setIfPresent(&c.Database.Collection, databaseCollectionEnv)
	setIfPresent(&c.ObjectStore.Endpoint, storeEndpointEnv)
	setIfPresent(&c.ObjectStore.AccessKey, storeAccessKeyEnv)
	setIfPresent(&c.ObjectStore.SecretKey, storeSecretKeyEnv)
	setIfPresent(&c.ObjectStore.Bucket, bucketEnv)
	setIfPresent(&c.ObjectStore.Tenant, tenantEnv)
	setIfPresent(&c.Zoho.TokenURL, tokenURLEnv)
	setIfPresent(&c.Zoho.ArticlesURL, articlesURLEnv)
	setIfPresent(&c.Zoho.ClientID, clientIDEnv)
	setIfPresent(&c.Zoho.ClientSecret, clientSecretEnv)
	setIfPresent(&c.Zoho.RedirectURI, redirectURIEnv)
	setIfPresent(&c.Zoho.RefreshToken, refreshTokenEnv)
	setIfPresent(&c.Zoho.OrgID, orgIDEnv)
	setIfPresent(&c.Zoho.DepartmentID, departmentIDEnv)
	setIfPresent(&c.Zoho.CategoryID, categoryIDEnv)
	setIfPresent(&c.Zoho.Permission, permissionsEnv)
	setIfPresent(&c.OpenAI.APIKey, openAIAPIKeyEnv)
	setIfPresent(&c.OpenAI.Model, openAIModelEnv)
	setIfPresent(&c.OpenAI.EmbeddingModel, embeddingModelEnv)
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Zoho.TokenURL != "" {
		base.Zoho.TokenURL = override.Zoho.TokenURL
	}
	if override.Zoho.ArticlesURL != "" {
		base.Zoho.ArticlesURL = override.Zoho.ArticlesURL
	}
	if override.Zoho.ClientID != "" {
		base.Zoho.ClientID = override.Zoho.ClientID
	}
	if override.Zoho.ClientSecret != "" {
		base.Zoho.ClientSecret = override.Zoho.ClientSecret
	}
	if override.Zoho.RedirectURI != "" {
		base.Zoho.RedirectURI = override.Zoho.RedirectURI
	}
	if override.Zoho.RefreshToken != "" {
		base.Zoho.RefreshToken = override.Zoho.RefreshToken
	}
	if override.Zoho.OrgID != "" {
		base.Zoho.OrgID = override.Zoho.OrgID
	}
	if override.Zoho.DepartmentID != "" {
		base.Zoho.DepartmentID = override.Zoho.DepartmentID
	}
	if override.Zoho.CategoryID != "" {
		base.Zoho.CategoryID = override.Zoho.CategoryID
	}
	if override.Zoho.Permission != "" {
		base.Zoho.Permission = override.Zoho.Permission
	}

	if override.ObjectStore.Endpoint != "" {
		base.ObjectStore.Endpoint = override.ObjectStore.Endpoint
	}
	if override.ObjectStore.AccessKey != "" {
		base.ObjectStore.AccessKey = override.ObjectStore.AccessKey
	}
	if override.ObjectStore.SecretKey != "" {
		base.ObjectStore.SecretKey = override.ObjectStore.SecretKey
	}
	if override.ObjectStore.Bucket != "" {
		base.ObjectStore.Bucket = override.ObjectStore.Bucket
	}
	if override.ObjectStore.Secure {
		base.ObjectStore.Secure = true
	}
	if override.ObjectStore.Tenant != "" {
		base.ObjectStore.Tenant = override.ObjectStore.Tenant
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Collection != "" {
		base.Database.Collection = override.Database.Collection
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.EmbeddingModel != "" {
		base.OpenAI.EmbeddingModel = override.OpenAI.EmbeddingModel
	}
	if override.OpenAI.MaxKeywords > 0 {
		base.OpenAI.MaxKeywords = override.OpenAI.MaxKeywords
	}

	if override.Sync.SnapshotRetention > 0 {
		base.Sync.SnapshotRetention = override.Sync.SnapshotRetention
	}

	if override.Push.MaxConcurrent > 0 {
		base.Push.MaxConcurrent = override.Push.MaxConcurrent
	}
	if override.Push.PacingInterval > 0 {
		base.Push.PacingInterval = override.Push.PacingInterval
	}
	if override.Push.MaxAttempts > 0 {
		base.Push.MaxAttempts = override.Push.MaxAttempts
	}
	if override.Push.BackoffFactor > 0 {
		base.Push.BackoffFactor = override.Push.BackoffFactor
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Zoho: ZohoConfig{
			TokenURL:    "https://accounts.zoho.com/oauth/v2/token",
			ArticlesURL: "https://desk.zoho.com/api/v1/articles",
			Permission:  "REGISTEREDUSERS",
		},
		ObjectStore: ObjectStoreConfig{Secure: true},
		Database:    DatabaseConfig{Collection: "langchain_pg_embedding"},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			MaxKeywords:    4,
		},
		Sync: SyncConfig{SnapshotRetention: 3},
		Push: PushConfig{
			MaxConcurrent:  3,
			PacingInterval: time.Second,
			MaxAttempts:    5,
			BackoffFactor:  2,
		},
	}
}
