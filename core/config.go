package core

// RecommendConfig 是推荐请求的默认值接口。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐条数
	DefaultTopN() int

	// DefaultPoolSize 返回默认的候选池大小
	DefaultPoolSize() int

	// DefaultSeed 返回随机候选池的默认种子
	DefaultSeed() int64

	// DefaultThreshold 返回展示用的相关性阈值（只打标，不过滤）
	DefaultThreshold() float64

	// DefaultExplainTopK 返回解释时每侧展示的关键词数
	DefaultExplainTopK() int

	// DefaultHistoryTopK 返回"最相似的历史阅读"条数
	DefaultHistoryTopK() int

	// MinHistory 返回建议的最少历史条数（不足时只给出提示）
	MinHistory() int
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int          { return 10 }
func (c *DefaultRecommendConfig) DefaultPoolSize() int      { return 20000 }
func (c *DefaultRecommendConfig) DefaultSeed() int64        { return 42 }
func (c *DefaultRecommendConfig) DefaultThreshold() float64 { return 0.04 }
func (c *DefaultRecommendConfig) DefaultExplainTopK() int   { return 10 }
func (c *DefaultRecommendConfig) DefaultHistoryTopK() int   { return 3 }
func (c *DefaultRecommendConfig) MinHistory() int           { return 3 }
