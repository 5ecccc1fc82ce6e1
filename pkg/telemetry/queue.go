// Package telemetry publishes transaction outcomes and motor status
// over MQTT for external monitors.
package telemetry

import (
	"net/url"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue wraps the MQTT client with a topic prefix. Handlers are routed
// locally so overlapping patterns share one broker subscription each.
type Queue struct {
	Client      paho.Client
	TopicPrefix string

	subsMu sync.Mutex
	subs   map[string][]Handler
}

// MatchTopic matches topic against an MQTT pattern with + and #.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	if len(tokensP) > len(tokensT) {
		return false
	}
	for i, token := range tokensP {
		if token == "+" {
			continue
		}
		if token == "#" && i+1 == len(tokensP) {
			break
		}
		if token != tokensT[i] {
			return false
		}
	}
	return true
}

// ClientID derives a stable MQTT client ID for this host.
func ClientID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "i2clink"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return "i2clink-" + id
}

// ClientOptionsFromURL creates ClientOptions and a topic prefix from a
// broker URL such as mqtt://host:1883/i2clink/.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetClientID(ClientID())
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueueFromURL creates a Queue from a broker URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	q := &Queue{TopicPrefix: topicPrefix}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("telemetry connected")
		q.resubscribe()
	})
	opts.SetConnectionLostHandler(func(c paho.Client, err error) {
		glog.Warningf("telemetry connection lost: %v", err)
	})
	q.Client = paho.NewClient(opts)
	return q, nil
}

// Connect connects the client.
func (q *Queue) Connect() error {
	token := q.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Pub publishes to a topic under the prefix.
func (q *Queue) Pub(topic string, payload []byte) {
	if glog.V(2) {
		glog.Infof("PUB %q", q.TopicPrefix+topic)
	}
	q.Client.Publish(q.TopicPrefix+topic, 0, false, payload)
}

// Sub registers handler for pattern and subscribes the pattern under
// the prefix on its first registration.
func (q *Queue) Sub(pattern string, handler Handler) error {
	q.subsMu.Lock()
	if q.subs == nil {
		q.subs = make(map[string][]Handler)
	}
	first := len(q.subs[pattern]) == 0
	q.subs[pattern] = append(q.subs[pattern], handler)
	q.subsMu.Unlock()

	if !first {
		return nil
	}
	if glog.V(2) {
		glog.Infof("SUB %q", q.TopicPrefix+pattern)
	}
	token := q.Client.Subscribe(q.TopicPrefix+pattern, 0, q.dispatch)
	token.Wait()
	return token.Error()
}

// resubscribe re-issues all broker subscriptions after a reconnect.
func (q *Queue) resubscribe() {
	q.subsMu.Lock()
	patterns := make([]string, 0, len(q.subs))
	for pattern := range q.subs {
		patterns = append(patterns, pattern)
	}
	q.subsMu.Unlock()
	for _, pattern := range patterns {
		q.Client.Subscribe(q.TopicPrefix+pattern, 0, q.dispatch)
	}
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	q.route(strings.TrimPrefix(msg.Topic(), q.TopicPrefix), msg.Payload())
}

// route fans a message out to every handler whose pattern matches.
func (q *Queue) route(topic string, payload []byte) {
	var handlers []Handler
	q.subsMu.Lock()
	for pattern, hs := range q.subs {
		if MatchTopic(topic, pattern) {
			handlers = append(handlers, hs...)
		}
	}
	q.subsMu.Unlock()
	for _, h := range handlers {
		h(topic, payload)
	}
}
