package config

// DefaultSelfTestQueries is the canned query list used by the batch harness
// when the config does not provide one.
var DefaultSelfTestQueries = []string{
	"AppState.swift",
	"how does the git manager refresh status",
	"fix the docker stats polling error",
	"explain the workflow executor",
	"where is SessionAnalytics defined",
	"which packages depend on the rag indexer",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/unisearch/data/db/knowledge.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/unisearch/data/indices/bleve"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/unisearch/data/indices/vectors"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/unisearch/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 20
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 50
	}
	if cfg.Search.DebounceMs == 0 {
		cfg.Search.DebounceMs = 400
	}
	if cfg.Search.MemoryHalfLifeHours == 0 {
		cfg.Search.MemoryHalfLifeHours = 72
	}
	if cfg.Search.RecencyHalfLifeHours == 0 {
		cfg.Search.RecencyHalfLifeHours = 24 * 14
	}
	if cfg.Search.Weights == (ScoreWeights{}) {
		cfg.Search.Weights = ScoreWeights{
			Keyword:      0.30,
			Semantic:     0.25,
			Entity:       0.20,
			Recency:      0.10,
			Relationship: 0.15,
		}
	}
	if cfg.Search.ChunkSize == 0 {
		cfg.Search.ChunkSize = 512
	}
	if cfg.Search.ChunkOverlap == 0 {
		cfg.Search.ChunkOverlap = 50
	}
	if cfg.Search.SelfTestQueries == nil {
		cfg.Search.SelfTestQueries = append([]string(nil), DefaultSelfTestQueries...)
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".go", ".swift", ".py", ".ts", ".pdf", ".docx", ".xlsx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
