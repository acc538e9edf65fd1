package embedding

import "testing"

func TestNewClient(t *testing.T) {
	if _, err := NewClient(ProviderOpenAI, "", "text-embedding-3-small"); err == nil {
		t.Error("openai without an api key must fail")
	}
	if _, err := NewClient("weaviate", "key", "model"); err == nil {
		t.Error("unknown provider must fail")
	}

	client, err := NewClient(ProviderOpenAI, "key", "text-embedding-3-large")
	if err != nil {
		t.Fatal(err)
	}
	oc, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("client = %T, want *OpenAIClient", client)
	}
	if oc.model != "text-embedding-3-large" {
		t.Errorf("model = %q, want the configured model carried through", oc.model)
	}
	if oc.httpClient.Timeout == 0 {
		t.Error("http client must carry a timeout")
	}

	mock, err := NewClient(ProviderMock, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mock.(*MockClient); !ok {
		t.Errorf("client = %T, want *MockClient", mock)
	}
}
