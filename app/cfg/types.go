package cfg

type Cfg struct {
	// Application configuration
	Port    string
	BaseUrl string
	DataDir string
	DBPath  string

	// Background processing
	WorkerCount       int
	SchedulerInterval int
	StaleAgeDays      int

	// Scraping behavior
	UserAgent       string
	RequestDelay    float64
	RequestTimeout  int
	DefaultMaxPosts int

	// Feed defaults
	UpdateInterval int
	FeedLanguage   string
	AuthorName     string
	AuthorEmail    string

	// Access control
	APIAccessKey string

	// Application metadata
	SeedsFile string
	Timezone  string
	Debug     bool
	Version   string
}
