package discordclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommandsOverwritesApplicationCommands(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("token-1", "chan-1")
	client.baseURL = server.URL

	err := client.RegisterCommands(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/applications/app-1/commands", gotPath)
	assert.Equal(t, "Bot token-1", gotAuth)

	var registered []applicationCommand
	require.NoError(t, json.Unmarshal(gotBody, &registered))

	names := make([]string, len(registered))
	for i, cmd := range registered {
		names[i] = cmd.Name
	}
	assert.ElementsMatch(t,
		[]string{"upcoming", "threads", "adduser", "setmode", "setneeded", "report"},
		names)
}

func TestSlashCommandCatalog(t *testing.T) {
	byName := make(map[string]applicationCommand)
	for _, cmd := range slashCommands() {
		byName[cmd.Name] = cmd
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		for _, opt := range cmd.Options {
			assert.True(t, opt.Required, "%s.%s", cmd.Name, opt.Name)
		}
	}

	assert.Len(t, byName["setmode"].Options[0].Choices, 4)
	assert.Len(t, byName["adduser"].Options[1].Choices, 8)
	assert.Equal(t, optionUser, byName["adduser"].Options[0].Type)
	assert.Len(t, byName["setneeded"].Options, 3)
}
