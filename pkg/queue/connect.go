package queue

import (
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

// Connect installs the driver named by cfg.Driver on the default manager.
func Connect(cfg config.QueueConfig) error {
	var d Driver
	switch cfg.Driver {
	case "", "memory":
		d = NewMemoryDriver(cfg.MemoryBuffer)
	case "redis":
		if cache.RDB == nil {
			return fmt.Errorf("queue: redis driver needs CACHE_DRIVER=redis")
		}
		d = NewRedisDriver(cache.RDB)
	case "kafka":
		d = NewKafkaDriver(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup)
	case "amqp":
		ad, err := NewAMQPDriver(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		d = ad
	default:
		return fmt.Errorf("queue: unsupported QUEUE_DRIVER %q (supported: memory, redis, kafka, amqp)", cfg.Driver)
	}

	SetDriver(d)
	SetMaxRetry(cfg.MaxRetry)
	return nil
}
