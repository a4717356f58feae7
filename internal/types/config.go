package types

// Config represents the application configuration
type Config struct {
	// Meta information for the configuration
	Meta struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Enabled     bool   `yaml:"enabled"`
		Template    string `yaml:"template,omitempty"` // Name of the template to use
	} `yaml:"meta"`

	Server struct {
		Port         int    `yaml:"port"`
		Host         string `yaml:"host"`
		ReadTimeout  int    `yaml:"read_timeout"`
		WriteTimeout int    `yaml:"write_timeout"`
		IdleTimeout  int    `yaml:"idle_timeout"`
	} `yaml:"server"`

	// Folders lists the directories watched for report files.
	Folders []string `yaml:"folders"`

	Scanning struct {
		Mode            string   `yaml:"mode"` // disabled, interval, fixed
		IntervalMinutes int      `yaml:"interval_minutes"`
		FixedTimes      []string `yaml:"fixed_times"`    // "HH:MM" clock times
		WindowMinutes   int      `yaml:"window_minutes"` // firing window after each fixed time
		TickSeconds     int      `yaml:"tick_seconds"`   // heartbeat cadence
	} `yaml:"scanning"`

	Matching struct {
		// TicketsKeyword is the generic keyword that satisfies the
		// recurring-tickets service regardless of the exact label.
		TicketsKeyword string `yaml:"tickets_keyword"`

		Contract struct {
			// NameTokens must all appear in the normalized recipient
			// name for the contract-variant rule to apply.
			NameTokens []string `yaml:"name_tokens"`
			// AgencyCodes alternatively trigger the variant on exact
			// sigla match.
			AgencyCodes []string `yaml:"agency_codes"`
			// FileTokens must all appear in the normalized filename:
			// program code, contract id and year for the deployment.
			FileTokens []string `yaml:"file_tokens"`
			// ServiceLabel names the pseudo-service shown for matches.
			ServiceLabel string `yaml:"service_label"`
		} `yaml:"contract"`
	} `yaml:"matching"`

	Content struct {
		Generator string `yaml:"generator"` // template or openai
		Sender    string `yaml:"sender"`
		OpenAI    struct {
			APIKey         string `yaml:"api_key"`
			Model          string `yaml:"model"`
			Endpoint       string `yaml:"endpoint,omitempty"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"openai"`
	} `yaml:"content"`

	Storage struct {
		RegistryPath string `yaml:"registry_path"`
		SendLog      struct {
			Type string `yaml:"type"` // "file" or "sqlite"
			Path string `yaml:"path"`
		} `yaml:"send_log"`
		DraftsPath string `yaml:"drafts_path"`
	} `yaml:"storage"`

	Security struct {
		APIKeys []string `yaml:"api_keys"`
		CORS    struct {
			Enabled        bool     `yaml:"enabled"`
			AllowedOrigins []string `yaml:"allowed_origins"`
			AllowedMethods []string `yaml:"allowed_methods"`
		} `yaml:"cors"`
	} `yaml:"security"`

	Logging struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"` // text, json, dev
		IncludeCaller bool   `yaml:"include_caller"`
	} `yaml:"logging"`

	Monitoring struct {
		HealthCheckPath string `yaml:"health_check_path"`
	} `yaml:"monitoring"`
}
