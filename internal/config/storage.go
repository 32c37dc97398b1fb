package config

// StorageConfig selects the backend that lists dataset files and moves
// footer bytes. Only the block matching Backend is read.
type StorageConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=memory local hdfs s3 minio azure oss cos"`
	Local   LocalConfig `mapstructure:"local"`
	HDFS    HDFSConfig  `mapstructure:"hdfs"`
	S3      S3Config    `mapstructure:"s3"`
	MinIO   MinIOConfig `mapstructure:"minio"`
	Azure   AzureConfig `mapstructure:"azure"`
	OSS     OSSConfig   `mapstructure:"oss"`
	COS     COSConfig   `mapstructure:"cos"`
}

type LocalConfig struct {
	Root string `mapstructure:"root"`
}

type HDFSConfig struct {
	NameNodes []string `mapstructure:"namenodes"`
	Username  string   `mapstructure:"username"`
}

type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	SessionToken   string `mapstructure:"session_token"`
	EndpointURL    string `mapstructure:"endpoint_url"` // S3-compatible services
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Secure    bool   `mapstructure:"secure"`
}

type AzureConfig struct {
	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
	Container   string `mapstructure:"container"`
	Endpoint    string `mapstructure:"endpoint"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
}

type COSConfig struct {
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	HTTPS     bool   `mapstructure:"https"`
}
