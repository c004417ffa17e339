package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// AppConfig is the deploy-time configuration, stored as YAML in the
// "shift-scan" SSM parameter.
type AppConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
	SigningSecret  string `yaml:"signingSecret"`
	Slack          struct {
		Token                  string `yaml:"token"`
		DefaultChannel         string `yaml:"defaultChannel"`
		TimecardChangesChannel string `yaml:"timecardChangesChannel"`
		TimecardStatusChannel  string `yaml:"timecardStatusChannel"`
		EquipmentBreakChannel  string `yaml:"equipmentBreakChannel"`
	} `yaml:"slack"`
}

var (
	once    sync.Once
	cfg     *AppConfig
	loadErr error
)

// LoadAppConfig reads the SSM parameter once per process. When CONFIG_FILE
// is set (local development) the YAML is read from disk instead.
func LoadAppConfig(ctx context.Context) (*AppConfig, error) {
	once.Do(func() {
		if path := os.Getenv("CONFIG_FILE"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("read config file: %w", err)
				return
			}
			cfg, loadErr = parse(raw)
			return
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(awsCfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String("shift-scan"),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		cfg, loadErr = parse([]byte(*out.Parameter.Value))
	})

	return cfg, loadErr
}

func parse(raw []byte) (*AppConfig, error) {
	var parsed AppConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if parsed.MaxConnections == 0 {
		parsed.MaxConnections = 10
	}
	return &parsed, nil
}
