package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	MonitorsDir       string
	RulesFile         string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Feed provider configuration
	RelayURL     string
	FeedBaseURL  string
	FeedLanguage string
	FeedCountry  string
	FeedEdition  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
