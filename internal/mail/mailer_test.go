package mail

import "testing"

func TestValidate(t *testing.T) {
	good := Message{From: "noreply@aitio.org", To: "a@x.com", Subject: "Activate your account", Text: "code inside"}
	if err := validate(good); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}

	cases := []Message{
		{From: "noreply@aitio.org", To: "", Subject: "Activate your account", Text: "code inside"},
		{From: "noreply@aitio.org", To: "not-an-address", Subject: "Activate your account", Text: "code inside"},
		{From: "noreply@aitio.org", To: "a@x.com", Subject: "hi", Text: "code inside"},
		{From: "noreply@aitio.org", To: "a@x.com", Subject: "Activate your account", Text: "x"},
	}
	for _, msg := range cases {
		if err := validate(msg); err == nil {
			t.Fatalf("expected rejection for %+v", msg)
		}
	}
}

func TestLogSender(t *testing.T) {
	if err := (LogSender{}).Send(Message{From: "noreply@aitio.org", To: "a@x.com", Subject: "Activate your account", Text: "code inside"}); err != nil {
		t.Fatalf("LogSender.Send: %v", err)
	}
}
