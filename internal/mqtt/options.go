package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monitora/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var errStopped = errors.New("mqtt client stopped")

// Options holds the broker settings shared by the subscriber and publisher.
type Options struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Broker:   cfg.MQTTBroker,
		Port:     cfg.MQTTPort,
		ClientID: cfg.MQTTClientID,
		Topic:    cfg.MQTTTopic,
	}
}

func (o Options) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", o.Broker, o.Port)
}

func newClientOptions(o Options) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.BrokerURL())
	opts.SetClientID(o.ClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	return opts
}

// waitToken waits for token while honouring ctx and stop. With ConnectRetry
// enabled a connect token may not complete until the broker comes up.
func waitToken(ctx context.Context, token mqtt.Token, stop <-chan struct{}) error {
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			return token.Error()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return errStopped
		default:
		}
	}
}
