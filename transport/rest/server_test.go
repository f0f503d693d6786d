package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
	"github.com/rocketscienceinc/fourrow-backend/internal/repository"
	"github.com/rocketscienceinc/fourrow-backend/internal/usecase"
	wshub "github.com/rocketscienceinc/fourrow-backend/transport/websocket"
)

var errStorageDown = errors.New("storage down")

type failingTally struct {
	mock.Mock
}

func (that *failingTally) IncrementWins(ctx context.Context, player entity.Mark) error {
	return that.Called(ctx, player).Error(0)
}

func (that *failingTally) Get(ctx context.Context) (*entity.Tally, error) {
	args := that.Called(ctx)
	tally, _ := args.Get(0).(*entity.Tally)

	return tally, args.Error(1)
}

func (that *failingTally) Reset(ctx context.Context) error {
	return that.Called(ctx).Error(0)
}

type testEnv struct {
	server *httptest.Server
	hub    *wshub.Hub
}

func newTestEnv(t *testing.T, tally repository.TallyRepository) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := wshub.NewHub(logger)
	manager := usecase.NewGameManager(logger, tally, hub)

	server := httptest.NewServer(New(logger, manager, hub).Handler())
	t.Cleanup(server.Close)

	return &testEnv{server: server, hub: hub}
}

func (that *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, that.server.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func (that *testEnv) createGame(t *testing.T) entity.Game {
	t.Helper()

	resp, data := that.do(t, http.MethodPost, "/games", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var game entity.Game
	require.NoError(t, json.Unmarshal(data, &game))

	return game
}

func (that *testEnv) move(t *testing.T, id string, row, col int) (*http.Response, moveResponse) {
	t.Helper()

	body, err := json.Marshal(map[string]int{"row": row, "col": col})
	require.NoError(t, err)

	resp, data := that.do(t, http.MethodPost, "/games/"+id+"/moves", string(body))

	var out moveResponse
	require.NoError(t, json.Unmarshal(data, &out))

	return resp, out
}

func TestServer_Ping(t *testing.T) {
	env := newTestEnv(t, repository.NewMemoryTallyRepository())

	// When: the liveness probe is called
	resp, data := env.do(t, http.MethodGet, "/ping", "")

	// Then: it answers pong
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(data))
}

func TestServer_Games(t *testing.T) {
	t.Run("Create then get", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())

		// Given: a created game
		game := env.createGame(t)

		// When: it is fetched by id
		resp, data := env.do(t, http.MethodGet, "/games/"+game.ID, "")

		// Then: the same fresh game is returned
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got entity.Game
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, game.ID, got.ID)
		assert.Equal(t, entity.PlayerX, got.CurrentPlayer)
		assert.True(t, got.Active)
	})

	t.Run("Unknown game is 404", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())

		for _, tc := range []struct{ method, path, body string }{
			{http.MethodGet, "/games/missing", ""},
			{http.MethodDelete, "/games/missing", ""},
			{http.MethodPost, "/games/missing/reset", ""},
			{http.MethodPost, "/games/missing/moves", `{"row":0,"col":0}`},
			{http.MethodGet, "/games/missing/legal-moves", ""},
			{http.MethodGet, "/games/missing/events", ""},
		} {
			resp, _ := env.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.method+" "+tc.path)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)

		// When: the game is deleted
		resp, _ := env.do(t, http.MethodDelete, "/games/"+game.ID, "")

		// Then: it is gone
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = env.do(t, http.MethodGet, "/games/"+game.ID, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Reset", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)
		resp, _ := env.move(t, game.ID, 1, 1)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// When: the game is reset
		resp, data := env.do(t, http.MethodPost, "/games/"+game.ID+"/reset", "")

		// Then: the board is empty again
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got entity.Game
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, entity.EmptyCell, got.Board[1][1])
		assert.Equal(t, entity.PlayerX, got.CurrentPlayer)
	})
}

func TestServer_Moves(t *testing.T) {
	t.Run("Accepted move", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)

		// When: X plays (2,2)
		resp, out := env.move(t, game.ID, 2, 2)

		// Then: the result and new state come back
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, entity.OutcomeContinued, out.Result.Outcome)
		assert.Equal(t, entity.PlayerX, out.Game.Board[2][2])
		assert.Equal(t, entity.PlayerO, out.Game.CurrentPlayer)
		assert.Empty(t, out.Error)
	})

	t.Run("Rejections map to status codes", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)

		_, _ = env.move(t, game.ID, 2, 2)

		// When: O plays the occupied cell
		resp, out := env.move(t, game.ID, 2, 2)

		// Then: 409 with the reason
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, entity.ReasonAlreadyTaken, out.Result.Reason)
		assert.NotEmpty(t, out.Error)

		// When: O plays off the board
		resp, out = env.move(t, game.ID, 5, 0)

		// Then: 400
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, entity.ReasonOutOfBounds, out.Result.Reason)

		// When: O plays a corner and X plays next to (2,2)
		resp, _ = env.move(t, game.ID, 0, 0)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp, out = env.move(t, game.ID, 3, 3)

		// Then: 409 adjacency
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, entity.ReasonAdjacentToOwnLastMove, out.Result.Reason)
		assert.Equal(t, entity.PlayerX, out.Game.CurrentPlayer)
	})

	t.Run("Malformed body", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)

		for _, body := range []string{`{`, `{"row":1}`, `{"row":"a","col":1}`} {
			resp, _ := env.do(t, http.MethodPost, "/games/"+game.ID+"/moves", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		}
	})

	t.Run("Legal moves", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)
		_, _ = env.move(t, game.ID, 0, 0)

		// When: legal moves are listed for O
		resp, data := env.do(t, http.MethodGet, "/games/"+game.ID+"/legal-moves", "")

		// Then: O may play anywhere empty
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out legalMovesResponse
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, entity.PlayerO, out.Player)
		assert.Len(t, out.Moves, 24)
		assert.Equal(t, entity.Position{Row: 0, Col: 1}, out.Moves[0])
	})
}

func TestServer_Tally(t *testing.T) {
	t.Run("Empty tally and reset", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())

		resp, data := env.do(t, http.MethodGet, "/tally", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"X":0,"O":0}`, string(data))

		resp, _ = env.do(t, http.MethodDelete, "/tally", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("Storage failure is 500", func(t *testing.T) {
		// Given: a tally store that is down
		tally := &failingTally{}
		tally.On("Get", mock.Anything).Return(nil, errStorageDown)
		env := newTestEnv(t, tally)

		// When: the tally is read
		resp, data := env.do(t, http.MethodGet, "/tally", "")

		// Then: 500 without leaking the cause
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, string(data), errStorageDown.Error())
	})
}

func TestServer_Events(t *testing.T) {
	t.Run("Watcher receives move events", func(t *testing.T) {
		env := newTestEnv(t, repository.NewMemoryTallyRepository())
		game := env.createGame(t)

		// Given: a websocket watcher on the game
		url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/games/" + game.ID + "/events"
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = resp.Body.Close()
			_ = conn.Close()
		})

		require.Eventually(t, func() bool {
			return env.hub.Watchers(game.ID) == 1
		}, time.Second, 10*time.Millisecond)

		// When: a move is made over HTTP
		moveResp, _ := env.move(t, game.ID, 4, 4)
		require.Equal(t, http.StatusOK, moveResp.StatusCode)

		// Then: the watcher gets the move event
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var event entity.GameEvent
		require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&event))
		assert.Equal(t, entity.EventMove, event.Type)
		require.NotNil(t, event.Result)
		assert.Equal(t, entity.Position{Row: 4, Col: 4}, event.Result.Position)
	})
}
