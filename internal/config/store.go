package config

import "os"

const (
	storeURLEnv             = "STORE_URL"
	storeKeyEnv             = "STORE_KEY"
	scheduleTableEnv        = "STORE_SCHEDULES_TABLE"
	regulationTableEnv      = "STORE_REGULATIONS_TABLE"
	subscriptionTableEnv    = "STORE_SUBSCRIPTIONS_TABLE"
	rpcFunctionEnv          = "STORE_RPC_FUNCTION"
	subscriptionSQLitePathE = "SUBSCRIPTIONS_SQLITE_PATH"
)

// StoreConfig points at the schedule database's REST interface. When
// SubscriptionSQLitePath is set, subscriptions are kept in a local sqlite
// file instead of the remote table.
type StoreConfig struct {
	URL               string
	Key               string
	ScheduleTable     string
	RegulationTable   string
	SubscriptionTable string
	RPCFunction       string

	SubscriptionSQLitePath string
}

func LoadStoreConfig() (*StoreConfig, error) {
	return &StoreConfig{
		URL:               os.Getenv(storeURLEnv),
		Key:               os.Getenv(storeKeyEnv),
		ScheduleTable:     getEnvOrDefault(scheduleTableEnv, "schedules"),
		RegulationTable:   getEnvOrDefault(regulationTableEnv, "parking_regulations"),
		SubscriptionTable: getEnvOrDefault(subscriptionTableEnv, "subscriptions"),
		RPCFunction:       getEnvOrDefault(rpcFunctionEnv, "schedules_near"),

		SubscriptionSQLitePath: os.Getenv(subscriptionSQLitePathE),
	}, nil
}

func (c *StoreConfig) Validate() error {
	if c == nil || c.URL == "" {
		return ErrStoreURLMissing
	}
	if c.Key == "" {
		return ErrStoreKeyMissing
	}
	return nil
}
