package mention

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
)

type mockDirectory struct {
	users map[string]*model.User
	err   error
	calls []string
}

func (m *mockDirectory) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.calls = append(m.calls, username)
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, model.ErrUserNotFound
}

func newDirectory(usernames ...string) *mockDirectory {
	users := make(map[string]*model.User, len(usernames))
	for _, name := range usernames {
		users[name] = &model.User{ID: uuid.New(), Username: name}
	}
	return &mockDirectory{users: users}
}

func extractedUsernames(t *testing.T, users []*model.User) []string {
	t.Helper()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	sort.Strings(names)
	return names
}

func TestExtract_DistinctMentions(t *testing.T) {
	dir := newDirectory("alice", "bob")
	ext := NewExtractor(dir)

	users, err := ext.Extract(context.Background(), "hi @alice and @bob, cc @alice")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got := extractedUsernames(t, users)
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mentions = %v, want %v", got, want)
	}
}

func TestExtract_UnresolvedUsernamesDropped(t *testing.T) {
	dir := newDirectory("alice")
	ext := NewExtractor(dir)

	users, err := ext.Extract(context.Background(), "@alice meet @ghost")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got := extractedUsernames(t, users)
	if !reflect.DeepEqual(got, []string{"alice"}) {
		t.Errorf("mentions = %v, want [alice]", got)
	}
}

func TestExtract_MalformedTokens(t *testing.T) {
	dir := newDirectory("alice")
	ext := NewExtractor(dir)

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"bare at sign", "ping @ nobody", 0},
		{"at before punctuation", "wat @! @?", 0},
		{"no mentions at all", "plain text", 0},
		{"underscore and digits are word chars", "hey @alice", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := ext.Extract(context.Background(), tt.content)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if len(users) != tt.want {
				t.Errorf("len(mentions) = %d, want %d", len(users), tt.want)
			}
		})
	}
}

func TestExtract_EmptyContentSkipsDirectory(t *testing.T) {
	dir := newDirectory()
	ext := NewExtractor(dir)

	users, err := ext.Extract(context.Background(), "no mentions here")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no mentions, got %d", len(users))
	}
	if len(dir.calls) != 0 {
		t.Errorf("directory called %d times, want 0", len(dir.calls))
	}
}

func TestExtract_DuplicateTokenResolvedOnce(t *testing.T) {
	dir := newDirectory("alice")
	ext := NewExtractor(dir)

	if _, err := ext.Extract(context.Background(), "@alice @alice @alice"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(dir.calls) != 1 {
		t.Errorf("directory called %d times, want 1", len(dir.calls))
	}
}

func TestExtract_InfrastructureErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	dir := &mockDirectory{err: dbErr}
	ext := NewExtractor(dir)

	_, err := ext.Extract(context.Background(), "@alice")
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want wrapped %v", err, dbErr)
	}
}
