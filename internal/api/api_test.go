package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/storage"
	"ai-agent-character-demo/client/internal/transport"
	"ai-agent-character-demo/client/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api      *Client
	store    *storage.Memory
	notified *notify.Recorder
	mux      *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	validator, err := transport.NewSchemaValidator()
	require.NoError(t, err)

	store := storage.NewMemory()
	rec := notify.NewRecorder()
	tc := transport.NewClient(srv.URL, TokenFromStore(store), rec,
		transport.WithValidator(validator),
		transport.WithLogger(logger.Discard()),
	)
	return &fixture{api: New(tc, store), store: store, notified: rec, mux: mux}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestLoginPersistsToken(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.LoginRequest{Email: "a@b.com", Password: "pw"}, req)
		writeJSON(w, http.StatusOK, `{"access_token":"t1","user_id":7}`)
	})

	resp, err := f.api.Auth.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.AccessToken)
	assert.EqualValues(t, 7, resp.UserID)

	token, ok, err := f.store.Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
}

func TestLoginFailureLeavesStorageEmpty(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
	})

	_, err := f.api.Auth.Login(context.Background(), "a@b.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.Equal(t, []string{"Incorrect email or password"}, f.notified.Messages(notify.LevelError))

	_, ok, _ := f.store.Get(context.Background(), storage.KeyToken)
	assert.False(t, ok)
}

func TestSignupSendsAllFields(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ann","email":"ann@x.io","username":"ann","password":"pw"}`, string(raw))
		writeJSON(w, http.StatusCreated, `{"id":3,"email":"ann@x.io"}`)
	})

	raw, err := f.api.Auth.Signup(context.Background(), "Ann", "ann@x.io", "ann", "pw")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"email":"ann@x.io"}`, string(raw))

	_, ok, _ := f.store.Get(context.Background(), storage.KeyToken)
	assert.False(t, ok)
}

func TestLogoutClearsPairWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, storage.KeyToken, "t"))
	require.NoError(t, f.store.Set(ctx, storage.KeyUser, `{"id":1}`))

	require.NoError(t, f.api.Auth.Logout(ctx))

	_, hasToken, _ := f.store.Get(ctx, storage.KeyToken)
	_, hasUser, _ := f.store.Get(ctx, storage.KeyUser)
	assert.False(t, hasToken)
	assert.False(t, hasUser)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)
	body := `{"id":7,"email":"a@b.com","name":"Ann","username":"ann"}`
	f.mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, body)
	})
	require.NoError(t, f.store.Set(context.Background(), storage.KeyToken, "t1"))

	user, err := f.api.Auth.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 7, Email: "a@b.com", Name: "Ann", Username: "ann"}, user)

	body = `null`
	user, err = f.api.Auth.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCharacterOperations(t *testing.T) {
	f := newFixture(t)
	ada := `{"id":4,"name":"Ada","profession":"Mathematician","is_personal_character":true,"owner_id":7,"personality_traits":["curious"]}`

	f.mux.HandleFunc("GET /characters/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[`+ada+`,{"id":5,"name":"Bob","is_personal_character":false,"owner_id":null}]`)
	})
	f.mux.HandleFunc("POST /characters/", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ada","profession":"Mathematician"}`, string(raw))
		writeJSON(w, http.StatusOK, ada)
	})
	f.mux.HandleFunc("GET /characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.PathValue("id"))
		writeJSON(w, http.StatusOK, ada)
	})
	f.mux.HandleFunc("PUT /characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"description":"Counts"}`, string(raw))
		writeJSON(w, http.StatusOK, ada)
	})
	f.mux.HandleFunc("DELETE /characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.mux.HandleFunc("PATCH /characters/{id}/avatar", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"image_url":"https://img.test/a.png"}`, string(raw))
		writeJSON(w, http.StatusOK, ada)
	})
	f.mux.HandleFunc("POST /characters/ai-generate", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"details":"a Victorian mathematician"}`, string(raw))
		writeJSON(w, http.StatusOK, ada)
	})

	ctx := context.Background()
	chars := f.api.Characters

	list, err := chars.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[1].OwnerID)

	created, err := chars.Create(ctx, models.CharacterInput{Name: models.String("Ada"), Profession: models.String("Mathematician")})
	require.NoError(t, err)
	assert.Equal(t, "Mathematician", models.StringValue(created.Profession))

	got, err := chars.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = chars.Update(ctx, 4, models.CharacterInput{Description: models.String("Counts")})
	require.NoError(t, err)

	require.NoError(t, chars.Delete(ctx, 4))

	_, err = chars.UpdateAvatar(ctx, 4, "https://img.test/a.png")
	require.NoError(t, err)

	generated, err := chars.Generate(ctx, "a Victorian mathematician")
	require.NoError(t, err)
	assert.EqualValues(t, 4, generated.ID)

	assert.Empty(t, f.notified.All())
}

func TestChatOperations(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("GET /chat/conversations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"conversations":[
			{"conversation_id":1,"character_id":4,"user_id":7,"created_at":"2024-05-01T10:00:00","character":{"id":4,"name":"Ada"},
			 "last_message":{"id":9,"role":"assistant","content":"Hello","created_at":"2024-05-01T10:01:00"}},
			{"conversation_id":2,"character_id":5,"user_id":7,"created_at":"2024-05-02T10:00:00","character":{"id":5,"name":"Bob"},"last_message":null}
		]}`)
	})
	f.mux.HandleFunc("POST /chat/start/{id}", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Empty(t, raw)
		writeJSON(w, http.StatusOK, `{"conversation_id":3,"character_id":`+r.PathValue("id")+`,"user_id":7,"character":{"id":5,"name":"Bob"}}`)
	})
	// deliberately out of timestamp order
	f.mux.HandleFunc("GET /chat/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"messages":[
			{"id":3,"role":"assistant","content":"third","created_at":"2024-05-01T10:03:00"},
			{"id":1,"role":"user","content":"first","created_at":"2024-05-01T10:01:00"},
			{"id":2,"role":"assistant","content":"second","created_at":"2024-05-01T10:02:00"}
		]}`)
	})
	f.mux.HandleFunc("POST /chat/message/{id}", func(w http.ResponseWriter, r *http.Request) {
		var wire map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.Equal(t, map[string]any{"message": "hi there"}, wire)
		writeJSON(w, http.StatusOK, `{"id":10,"conversation_id":1,"role":"user","content":"hi there","created_at":"2024-05-01T10:05:00"}`)
	})

	ctx := context.Background()
	chat := f.api.Chat

	convs, err := chat.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "Hello", convs[0].LastMessage.Content)
	assert.Nil(t, convs[1].LastMessage)

	conv, err := chat.StartConversation(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, conv.ConversationID)
	assert.EqualValues(t, 5, conv.CharacterID)

	history, err := chat.GetConversationHistory(ctx, 1)
	require.NoError(t, err)
	var ids []uint
	for _, m := range history {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []uint{3, 1, 2}, ids)

	sent, err := chat.SendMessage(ctx, 1, "hi there")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, sent.Role)
	assert.Equal(t, "hi there", sent.Content)
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not found"}`)
	})

	_, err := f.api.Characters.Get(context.Background(), 99)

	var reqErr *transport.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Not found", reqErr.Message)
	assert.Len(t, f.notified.All(), 1)
}
