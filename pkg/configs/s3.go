package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// S3Config 对象存储配置，文件内容的 blob 都落在这个桶里.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 返回带 scheme 的端点 URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key_id", "minioadmin")
	v.SetDefault("storage.secret_access_key", "minioadmin")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket_name", "drivevault")
	v.SetDefault("storage.region", "us-east-1")
}
