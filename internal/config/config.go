package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every binary loads the same struct and reads the sections it needs.
type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	UserServicePort         string
	TripServicePort         string
	NotificationServicePort string
	GatewayPort             string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdentityServiceURL  string
	IdentityCacheTTL    time.Duration
	IdentityHTTPTimeout time.Duration

	BrokerDriver       string // kafka | redis | memory
	KafkaBrokers       []string
	KafkaClientID      string
	ConsumerGroup      string
	FriendRequestTopic string
	TripPlannerTopic   string
	NotificationTopics []string

	NotificationStore string // dynamo | mongo
	MongoURI          string
	MongoDatabase     string

	RevocationStore string // dynamo | redis

	UserServiceUpstream         string
	TripServiceUpstream         string
	NotificationServiceUpstream string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users          string
	FriendRequests string
	Trips          string
	Notifications  string
	RevokedTokens  string
}

var defaults = map[string]interface{}{
	"APP_ENV":                       "development",
	"LOG_LEVEL":                     "info",
	"LOG_FORMAT":                    "json",
	"USER_SERVICE_PORT":             "3000",
	"TRIP_SERVICE_PORT":             "3001",
	"NOTIFICATION_SERVICE_PORT":     "3004",
	"GATEWAY_PORT":                  "8080",
	"AWS_REGION":                    "us-east-1",
	"DYNAMO_TABLE_USERS":            "users",
	"DYNAMO_TABLE_FRIEND_REQUESTS":  "friend_requests",
	"DYNAMO_TABLE_TRIPS":            "trips",
	"DYNAMO_TABLE_NOTIFICATIONS":    "notifications",
	"DYNAMO_TABLE_REVOKED_TOKENS":   "revoked_tokens",
	"JWT_PRIVATE_KEY_PATH":          "./private_key.pem",
	"JWT_PUBLIC_KEY_PATH":           "./public_key.pem",
	"JWT_EXPIRY":                    "1h",
	"REDIS_ADDR":                    "localhost:6379",
	"REDIS_DB":                      0,
	"IDENTITY_SERVICE_URL":          "http://localhost:3000",
	"IDENTITY_CACHE_TTL":            "600s",
	"IDENTITY_HTTP_TIMEOUT":         "5s",
	"BROKER_DRIVER":                 "kafka",
	"KAFKA_BROKERS":                 "kafka:9092",
	"KAFKA_CLIENT_ID":               "trip-planner",
	"NOTIFICATION_CONSUMER_GROUP":   "notification-group",
	"FRIEND_REQUEST_TOPIC":          "friend-request",
	"TRIP_PLANNER_TOPIC":            "trip-planner",
	"NOTIFICATION_TOPICS":           "friend-request,trip-planner",
	"NOTIFICATION_STORE":            "dynamo",
	"MONGO_URI":                     "mongodb://localhost:27017",
	"MONGO_DATABASE":                "notifications",
	"REVOCATION_STORE":              "dynamo",
	"USER_SERVICE_UPSTREAM":         "http://localhost:3000",
	"TRIP_SERVICE_UPSTREAM":         "http://localhost:3001",
	"NOTIFICATION_SERVICE_UPSTREAM": "http://localhost:3004",
	"ALLOWED_ORIGINS":               "*",
}

// Load reads all configuration from environment variables, falling back to
// the defaults above.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return &Config{
		AppEnv:                  v.GetString("APP_ENV"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFormat:               v.GetString("LOG_FORMAT"),
		UserServicePort:         v.GetString("USER_SERVICE_PORT"),
		TripServicePort:         v.GetString("TRIP_SERVICE_PORT"),
		NotificationServicePort: v.GetString("NOTIFICATION_SERVICE_PORT"),
		GatewayPort:             v.GetString("GATEWAY_PORT"),
		AWSRegion:               v.GetString("AWS_REGION"),
		AWSEndpointURL:          v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID:          v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:            v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTables: DynamoTables{
			Users:          v.GetString("DYNAMO_TABLE_USERS"),
			FriendRequests: v.GetString("DYNAMO_TABLE_FRIEND_REQUESTS"),
			Trips:          v.GetString("DYNAMO_TABLE_TRIPS"),
			Notifications:  v.GetString("DYNAMO_TABLE_NOTIFICATIONS"),
			RevokedTokens:  v.GetString("DYNAMO_TABLE_REVOKED_TOKENS"),
		},
		JWTPrivateKeyPath:           v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:            v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTExpiry:                   v.GetDuration("JWT_EXPIRY"),
		RedisAddr:                   v.GetString("REDIS_ADDR"),
		RedisPassword:               v.GetString("REDIS_PASSWORD"),
		RedisDB:                     v.GetInt("REDIS_DB"),
		IdentityServiceURL:          strings.TrimRight(v.GetString("IDENTITY_SERVICE_URL"), "/"),
		IdentityCacheTTL:            v.GetDuration("IDENTITY_CACHE_TTL"),
		IdentityHTTPTimeout:         v.GetDuration("IDENTITY_HTTP_TIMEOUT"),
		BrokerDriver:                strings.ToLower(v.GetString("BROKER_DRIVER")),
		KafkaBrokers:                splitList(v.GetString("KAFKA_BROKERS")),
		KafkaClientID:               v.GetString("KAFKA_CLIENT_ID"),
		ConsumerGroup:               v.GetString("NOTIFICATION_CONSUMER_GROUP"),
		FriendRequestTopic:          v.GetString("FRIEND_REQUEST_TOPIC"),
		TripPlannerTopic:            v.GetString("TRIP_PLANNER_TOPIC"),
		NotificationTopics:          splitList(v.GetString("NOTIFICATION_TOPICS")),
		NotificationStore:           strings.ToLower(v.GetString("NOTIFICATION_STORE")),
		MongoURI:                    v.GetString("MONGO_URI"),
		MongoDatabase:               v.GetString("MONGO_DATABASE"),
		RevocationStore:             strings.ToLower(v.GetString("REVOCATION_STORE")),
		UserServiceUpstream:         v.GetString("USER_SERVICE_UPSTREAM"),
		TripServiceUpstream:         v.GetString("TRIP_SERVICE_UPSTREAM"),
		NotificationServiceUpstream: v.GetString("NOTIFICATION_SERVICE_UPSTREAM"),
		AllowedOrigins:              splitList(v.GetString("ALLOWED_ORIGINS")),
	}
}

// splitList turns a comma-separated env value into a trimmed, non-empty list.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
