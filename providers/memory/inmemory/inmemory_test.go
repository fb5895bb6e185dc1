package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/llmrecipes/providers/ai"
)

func TestStore_AppendAndAllMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}

	_ = s.AppendMessage(ctx, ai.NewUserMessage("hi"))
	_ = s.AppendMessage(ctx, ai.NewAssistantMessage("hello"))

	if n, _ := s.Count(ctx); n != 2 {
		t.Fatalf("expected 2 messages, got %d", n)
	}

	all, err := s.AllMessages(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].Role != ai.RoleUser || all[1].Role != ai.RoleAssistant {
		t.Fatalf("unexpected history: %v", all)
	}

	all[0].Content = "changed"
	again, _ := s.AllMessages(ctx)
	if again[0].Content == "changed" {
		t.Fatalf("expected AllMessages to return a copy")
	}
}

func TestStore_AllMessagesEmptyIsNonNil(t *testing.T) {
	all, _ := New().AllMessages(context.Background())
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", all)
	}
}

func TestStore_LastMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 5; i++ {
		_ = s.AppendMessage(ctx, ai.NewUserMessage(string(rune('a'+i))))
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"last two", 2, "de"},
		{"zero", 0, ""},
		{"negative", -3, ""},
		{"more than stored", 10, "abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.LastMessages(ctx, tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var sb strings.Builder
			for _, m := range got {
				sb.WriteString(m.Content)
			}
			if sb.String() != tt.want {
				t.Errorf("LastMessages(%d) = %q, want %q", tt.n, sb.String(), tt.want)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.AppendMessage(ctx, ai.NewUserMessage("x"))
	if err := s.ClearMessages(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty after clear, got %d", n)
	}
	_ = s.AppendMessage(ctx, ai.NewUserMessage("y"))
	all, _ := s.AllMessages(ctx)
	if len(all) != 1 || all[0].Content != "y" {
		t.Fatalf("unexpected history after clear: %v", all)
	}
}

func TestStore_MaxMessagesDropsOldest(t *testing.T) {
	ctx := context.Background()
	s := New(WithMaxMessages(3))
	for i := 1; i <= 5; i++ {
		_ = s.AppendMessage(ctx, ai.NewUserMessage(fmt.Sprint(i)))
	}

	all, _ := s.AllMessages(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	if all[0].Content != "3" || all[2].Content != "5" {
		t.Fatalf("expected oldest dropped, got %v", all)
	}
}

func TestStore_LogsAppend(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(WithLogger(logger))

	_ = s.AppendMessage(context.Background(), ai.NewUserMessage("hello"))

	out := buf.String()
	if !strings.Contains(out, "memory append") || !strings.Contains(out, "role=user") {
		t.Fatalf("expected append log, got %q", out)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AppendMessage(ctx, ai.NewUserMessage("m"))
		}()
	}
	wg.Wait()

	if n, _ := s.Count(ctx); n != 50 {
		t.Fatalf("expected 50 messages, got %d", n)
	}
}
