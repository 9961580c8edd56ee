package walletconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"balance-bench/internal/platform/hash"

	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

var (
	// ErrFileAccess 表示配置文件不存在或不可读。
	ErrFileAccess = errors.New("config file access")
	// ErrParse 表示配置内容语法错误、字段类型不符或缺少必填字段。
	ErrParse = errors.New("config parse")
)

// Config 是钱包配置文件的内容。加载后不再修改。
type Config struct {
	RPCURL  string
	Wallets []string

	// 以下为加载元数据，用于运行记录留痕。
	Path   string
	SHA256 string
}

// rawConfig 用指针区分“字段缺失”和“空列表”：wallets: [] 合法，缺少 wallets 不合法。
type rawConfig struct {
	RPCURL  *string   `yaml:"rpc_url" json:"rpc_url" plist:"rpc_url"`
	Wallets *[]string `yaml:"wallets" json:"wallets" plist:"wallets"`
}

// Loader 负责从磁盘读取并校验钱包配置。
type Loader struct {
	File string
}

func NewLoader(file string) *Loader {
	return &Loader{File: file}
}

// Load 一次性读取配置文件；按扩展名选择解码器，默认按 YAML 处理。
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.File)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFileAccess, l.File, err)
	}

	cfg, err := Parse(raw, formatOf(l.File))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.File, err)
	}
	cfg.Path = l.File
	cfg.SHA256 = hash.Bytes(raw)
	return cfg, nil
}

// Format 是配置文件的编码格式。
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatPlist Format = "plist"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".plist":
		return FormatPlist
	default:
		return FormatYAML
	}
}

// Parse 解码并校验配置内容。返回的错误均包装 ErrParse。
func Parse(raw []byte, format Format) (*Config, error) {
	var rc rawConfig
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(raw, &rc)
	case FormatPlist:
		// XML 与二进制 plist 都支持。
		_, err = plist.Unmarshal(raw, &rc)
	case FormatYAML, "":
		err = yaml.Unmarshal(raw, &rc)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrParse, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrParse, format, err)
	}

	if rc.RPCURL == nil {
		return nil, fmt.Errorf("%w: rpc_url is required", ErrParse)
	}
	if strings.TrimSpace(*rc.RPCURL) == "" {
		return nil, fmt.Errorf("%w: rpc_url is empty", ErrParse)
	}
	if rc.Wallets == nil {
		return nil, fmt.Errorf("%w: wallets is required", ErrParse)
	}

	wallets := make([]string, len(*rc.Wallets))
	copy(wallets, *rc.Wallets)
	return &Config{
		RPCURL:  strings.TrimSpace(*rc.RPCURL),
		Wallets: wallets,
	}, nil
}
