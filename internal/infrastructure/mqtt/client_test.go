package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
	"github.com/nerrad567/datacollector/internal/person"
)

// testConfig returns a valid MQTT configuration. No broker is contacted by
// these tests.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "datacollector-test",
		},
		QoS:         1,
		TopicPrefix: "datacollector",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"created", Topics{Prefix: "datacollector"}.PeopleEvent("created"), "datacollector/people/created"},
		{"custom prefix", Topics{Prefix: "site-a/"}.PeopleEvent("deleted"), "site-a/people/deleted"},
		{"empty prefix", Topics{}.PeopleEvent("updated"), "datacollector/people/updated"},
		{"wildcard", Topics{Prefix: "dc"}.AllPeopleEvents(), "dc/people/+"},
		{"status", Topics{Prefix: "dc"}.SystemStatus(), "dc/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEventAction(t *testing.T) {
	tests := map[person.EventType]string{
		person.EventCreated: "created",
		person.EventUpdated: "updated",
		person.EventDeleted: "deleted",
	}
	for in, want := range tests {
		if got := EventAction(in); got != want {
			t.Errorf("EventAction(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "collector", Password: "pw"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "datacollector-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "collector" || opts.Password != "pw" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured for plain tcp broker")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS MinVersion not set")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "dc"}, "datacollector-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false")
	}
	if opts.WillTopic != "dc/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if payload["status"] != "offline" || payload["reason"] != "unexpected_disconnect" {
		t.Errorf("will payload = %v", payload)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	var online map[string]string
	if err := json.Unmarshal([]byte(buildStatusPayload("dc", "online", "")), &online); err != nil {
		t.Fatalf("online payload is not JSON: %v", err)
	}
	if online["status"] != "online" || online["client_id"] != "dc" {
		t.Errorf("online payload = %v", online)
	}
	if _, ok := online["reason"]; ok {
		t.Error("online payload should not carry a reason")
	}
	if online["timestamp"] == "" {
		t.Error("online payload has no timestamp")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := Connect(ctx, cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	var nilClient *Client
	if nilClient.IsConnected() {
		t.Error("IsConnected() should be false for nil client")
	}

	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.HealthCheck(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "a/b", []byte("x"), 3, ErrInvalidQoS},
		{"oversize payload", "a/b", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"disconnected", "a/b", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishJSON_Disconnected(t *testing.T) {
	client := &Client{cfg: testConfig()}
	err := client.PublishJSON("a/b", map[string]int{"id": 1})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishJSON() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishJSON_Unencodable(t *testing.T) {
	client := &Client{cfg: testConfig()}
	err := client.PublishJSON("a/b", make(chan int))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
}

type fakePublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (f *fakePublisher) PublishJSON(topic string, v any) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, v)
	return f.err
}

type fakeLogger struct {
	warnings []string
}

func (f *fakeLogger) Info(string, ...any)  {}
func (f *fakeLogger) Error(string, ...any) {}
func (f *fakeLogger) Warn(msg string, _ ...any) {
	f.warnings = append(f.warnings, msg)
}

func TestEventPublisher_Notify(t *testing.T) {
	pub := &fakePublisher{}
	ep := NewEventPublisher(pub, Topics{Prefix: "dc"}, nil)

	p := person.Person{ID: 7, Fields: person.Fields{FullName: "Ada"}}
	ep.Notify(person.Event{Type: person.EventCreated, ID: 7, Person: &p})
	ep.Notify(person.Event{Type: person.EventDeleted, ID: 7})

	want := []string{"dc/people/created", "dc/people/deleted"}
	if strings.Join(pub.topics, ",") != strings.Join(want, ",") {
		t.Errorf("topics = %v, want %v", pub.topics, want)
	}
	msg, ok := pub.payloads[0].(EventMessage)
	if !ok || msg.ID != 7 || msg.Type != person.EventCreated {
		t.Fatalf("payload = %#v, want EventMessage for id 7", pub.payloads[0])
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "Ada") || strings.Contains(string(data), "full_name") {
		t.Errorf("broker payload %s carries personal fields", data)
	}
}

func TestEventPublisher_NotifyFailureLogged(t *testing.T) {
	pub := &fakePublisher{err: ErrNotConnected}
	log := &fakeLogger{}
	ep := NewEventPublisher(pub, Topics{}, log)

	ep.Notify(person.Event{Type: person.EventUpdated, ID: 1})

	if len(log.warnings) != 1 {
		t.Errorf("warnings = %v, want 1", log.warnings)
	}
}

func TestEventPublisher_WiredToService(t *testing.T) {
	pub := &fakePublisher{}
	svc := person.NewService(person.NewMemoryRepository())
	svc.AddNotifier(NewEventPublisher(pub, Topics{Prefix: "dc"}, nil))

	if _, err := svc.Create(context.Background(), person.Fields{FullName: "Ada"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "dc/people/created" {
		t.Errorf("topics = %v", pub.topics)
	}
}
