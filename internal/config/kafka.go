package config

// Kafka is optional for the standalone binary: with no addresses the relay
// and event consumer are not started.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"bipagem"`
}

func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}
