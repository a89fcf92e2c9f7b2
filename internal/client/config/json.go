package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clinicauth/internal/flagx"
	"github.com/dmitrijs2005/clinicauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "documents": "s3",
//	  "s3": {"bucket": "profiles", "endpoint": "http://localhost:9000"}
//	}
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	ProviderMode        string         `json:"provider"`
	DocumentBackend     string         `json:"documents"`
	DatabasePath        string         `json:"db_path"`
	SessionStorage      string         `json:"session_storage"`
	SessionFile         string         `json:"session_file"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`

	Datastore struct {
		ProjectID string `json:"project_id"`
		Namespace string `json:"namespace"`
		Endpoint  string `json:"endpoint"`
	} `json:"datastore"`

	S3 struct {
		Bucket    string `json:"bucket"`
		Prefix    string `json:"prefix"`
		Region    string `json:"region"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	} `json:"s3"`
}

// parseJson overlays Config with values from the file named by -c or
// -config. Keys missing from the file keep their current value. Panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.ProviderMode, jc.ProviderMode)
	setString(&cfg.DocumentBackend, jc.DocumentBackend)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.SessionStorage, jc.SessionStorage)
	setString(&cfg.SessionFile, jc.SessionFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}

	setString(&cfg.Datastore.ProjectID, jc.Datastore.ProjectID)
	setString(&cfg.Datastore.Namespace, jc.Datastore.Namespace)
	setString(&cfg.Datastore.Endpoint, jc.Datastore.Endpoint)

	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Prefix, jc.S3.Prefix)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
