// Package mqtt implements the remote raw channel over MQTT.
package mqtt

import (
	"container/list"
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Bus wraps an MQTT client with prefix-relative topics and local
// subscription fan-out.
type Bus struct {
	Client      paho.Client
	TopicPrefix string
	OnConnect   func(*Bus)

	subsLock     sync.RWMutex
	subs         map[string]*list.List
	wildcardSubs map[string]*list.List
}

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	bus      *Bus
	elm      *list.Element
	topic    string
	wildcard bool
	handler  Handler
}

// MatchTopic matches topic with a pattern using MQTT wildcards.
// A pattern with fewer levels than the topic matches as a prefix even
// without a trailing '#': "+/+/meta" matches "a/b/meta/extra". This is
// looser than broker-side filter semantics and is relied on for local
// fan-out of already-subscribed traffic.
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

// OptionsFromURL creates paho ClientOptions and a topic prefix from a
// URL like mqtt://host:port/topic-prefix.
func OptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	server := u.Scheme
	if server == "" || server == "mqtt" {
		server = "tcp"
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
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

// NewBus creates a Bus.
func NewBus(options *paho.ClientOptions, topicPrefix string) *Bus {
	b := &Bus{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(b.onConnect)
	options.SetConnectionLostHandler(b.onConnectionLost)
	b.Client = paho.NewClient(options)
	return b
}

// NewBusFromURL creates a Bus from a broker URL.
func NewBusFromURL(brokerURL string) (*Bus, error) {
	opts, topicPrefix, err := OptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewBus(opts, topicPrefix), nil
}

// Connect connects the client.
func (b *Bus) Connect() paho.Token {
	return b.Client.Connect()
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	b.Client.Disconnect(0)
	return nil
}

// Sub subscribes a topic.
func (b *Bus) Sub(topic string, handler Handler) *Subscription {
	wildcard := strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
	var newSub bool
	b.subsLock.Lock()
	if b.subs == nil {
		b.subs = make(map[string]*list.List)
		b.wildcardSubs = make(map[string]*list.List)
	}
	subs := b.subs
	if wildcard {
		subs = b.wildcardSubs
	}
	lst := subs[topic]
	if lst == nil {
		lst = list.New()
		subs[topic] = lst
		newSub = true
	}
	sub := &Subscription{
		bus:      b,
		topic:    topic,
		wildcard: wildcard,
		handler:  handler,
	}
	sub.elm = lst.PushBack(sub)
	b.subsLock.Unlock()

	if newSub {
		glog.V(2).Infof("SUB %q", b.TopicPrefix+topic)
		sub.Token = b.Client.Subscribe(b.TopicPrefix+topic, 0, b.dispatch)
	}
	return sub
}

// Pub publishes to a topic.
func (b *Bus) Pub(topic string, payload []byte) paho.Token {
	return b.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (b *Bus) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return b.Client.Publish(b.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe restores all existing subscriptions, used after the
// connection is re-established.
func (b *Bus) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	b.subsLock.RLock()
	for topic := range b.subs {
		filters[b.TopicPrefix+topic] = 0
	}
	for topic := range b.wildcardSubs {
		filters[b.TopicPrefix+topic] = 0
	}
	b.subsLock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	if glog.V(2) {
		for key := range filters {
			glog.Infof("SUB %q", key)
		}
	}
	return b.Client.SubscribeMultiple(filters, b.dispatch)
}

func (b *Bus) onConnect(paho.Client) {
	glog.Info("connected")
	b.Resubscribe()
	if h := b.OnConnect; h != nil {
		h(b)
	}
}

func (b *Bus) onConnectionLost(c paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
}

func (b *Bus) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, b.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(b.TopicPrefix):]
	var handlers []Handler
	b.subsLock.RLock()
	if lst := b.subs[topic]; lst != nil {
		for elm := lst.Front(); elm != nil; elm = elm.Next() {
			handlers = append(handlers, elm.Value.(*Subscription).handler)
		}
	}
	for key, lst := range b.wildcardSubs {
		if MatchTopic(topic, key) {
			for elm := lst.Front(); elm != nil; elm = elm.Next() {
				handlers = append(handlers, elm.Value.(*Subscription).handler)
			}
		}
	}
	b.subsLock.RUnlock()
	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}

// Close unsubscribes the handler.
func (s *Subscription) Close() error {
	var unsub bool
	s.bus.subsLock.Lock()
	subs := s.bus.subs
	if s.wildcard {
		subs = s.bus.wildcardSubs
	}
	if lst := subs[s.topic]; lst != nil {
		lst.Remove(s.elm)
		if unsub = lst.Len() == 0; unsub {
			delete(subs, s.topic)
		}
	}
	s.bus.subsLock.Unlock()
	if unsub {
		glog.V(2).Infof("UNSUB %q", s.topic)
		token := s.bus.Client.Unsubscribe(s.bus.TopicPrefix + s.topic)
		token.Wait()
		return token.Error()
	}
	return nil
}
