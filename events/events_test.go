package events

import "testing"

func TestBus_PostFansOutToSubscribers(t *testing.T) {
	b := NewBus()

	var gotA, gotB []string
	b.Subscribe(func(topic string, payload any) { gotA = append(gotA, topic) })
	b.Subscribe(func(topic string, payload any) { gotB = append(gotB, topic) })

	b.Post(TopicDidMount, DidMountPayload{MountPath: "/mnt"})
	b.Post(TopicDidUnmount, DidUnmountPayload{MountPath: "/mnt"})

	want := []string{TopicDidMount, TopicDidUnmount}
	if len(gotA) != len(want) || len(gotB) != len(want) {
		t.Fatalf("got A=%v B=%v want %v", gotA, gotB, want)
	}
	for i, topic := range want {
		if gotA[i] != topic || gotB[i] != topic {
			t.Fatalf("got A=%v B=%v want %v", gotA, gotB, want)
		}
	}
}

func TestNopSink_DiscardsEvents(t *testing.T) {
	var s Sink = NopSink{}
	s.Post(TopicMountFailed, MountFailedPayload{MountPath: "/mnt"})
}
