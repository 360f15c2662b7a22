package kafka

import "testing"

func TestBaseConfigMap(t *testing.T) {
	cm, err := Config{Brokers: []string{"a:9092", "b:9092"}, Topic: "swipes.changed", ClientID: "api"}.baseConfigMap()
	if err != nil {
		t.Fatalf("build config map: %v", err)
	}

	servers, err := cm.Get("bootstrap.servers", "")
	if err != nil || servers != "a:9092,b:9092" {
		t.Fatalf("unexpected bootstrap.servers: %v (%v)", servers, err)
	}
	protocol, _ := cm.Get("security.protocol", "")
	if protocol != "plaintext" {
		t.Fatalf("unexpected default protocol: %v", protocol)
	}
	clientID, _ := cm.Get("client.id", "")
	if clientID != "api" {
		t.Fatalf("unexpected client.id: %v", clientID)
	}
}

func TestBaseConfigMapRequiresBrokersAndTopic(t *testing.T) {
	if _, err := (Config{Topic: "t"}).baseConfigMap(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := (Config{Brokers: []string{"a:9092"}}).baseConfigMap(); err == nil {
		t.Fatalf("expected error without topic")
	}
}
