package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisClientOpt(t *testing.T) {
	t.Run("rejects malformed url", func(t *testing.T) {
		if _, err := redisClientOpt("not a url", false); err == nil {
			t.Fatal("expected error for malformed redis url")
		}
	})

	t.Run("parses addr password and db", func(t *testing.T) {
		opt, err := redisClientOpt("redis://:secret@redis.internal:6380/2", false)
		if err != nil {
			t.Fatalf("redisClientOpt: %v", err)
		}
		if opt.Addr != "redis.internal:6380" {
			t.Errorf("addr = %q, want redis.internal:6380", opt.Addr)
		}
		if opt.Password != "secret" {
			t.Errorf("password = %q, want secret", opt.Password)
		}
		if opt.DB != 2 {
			t.Errorf("db = %d, want 2", opt.DB)
		}
		if opt.TLSConfig != nil {
			t.Error("plain redis url should not carry a TLS config")
		}
	})

	t.Run("rediss url gets tls config", func(t *testing.T) {
		opt, err := redisClientOpt("rediss://redis.internal:6380", true)
		if err != nil {
			t.Fatalf("redisClientOpt: %v", err)
		}
		if opt.TLSConfig == nil {
			t.Fatal("rediss url should carry a TLS config")
		}
		if !opt.TLSConfig.InsecureSkipVerify {
			t.Error("insecure flag should propagate into the TLS config")
		}
	})

	t.Run("connects to a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)

		opt, err := redisClientOpt("redis://"+mr.Addr(), false)
		if err != nil {
			t.Fatalf("redisClientOpt: %v", err)
		}

		client := redis.NewClient(&redis.Options{Addr: opt.Addr, Password: opt.Password, DB: opt.DB})
		defer client.Close()

		if err := client.Ping(context.Background()).Err(); err != nil {
			t.Fatalf("ping via parsed options: %v", err)
		}
	})
}

func TestParseNotificationOutboxDuePayload(t *testing.T) {
	task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{OutboxID: "4f9c"})
	if err != nil {
		t.Fatalf("NewNotificationOutboxDueTask: %v", err)
	}
	if task.Type() != TaskNotificationOutboxDue {
		t.Errorf("task type = %q, want %q", task.Type(), TaskNotificationOutboxDue)
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		t.Fatalf("ParseNotificationOutboxDuePayload: %v", err)
	}
	if payload.OutboxID != "4f9c" {
		t.Errorf("outbox id = %q, want 4f9c", payload.OutboxID)
	}
}
