package app

// Config 存放应用级默认路径配置。
type Config struct {
	// ConfigPath 是钱包配置文件的固定相对路径（相对当前工作目录）。
	ConfigPath string
	DBPath     string
	ReportDir  string
}

// DefaultConfig 返回默认配置；无参数运行时只会用到 ConfigPath。
func DefaultConfig() Config {
	return Config{
		ConfigPath: "config.yaml",
		DBPath:     "data/bench.db",
		ReportDir:  "data/reports",
	}
}
