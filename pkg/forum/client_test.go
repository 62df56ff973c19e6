package forum

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.RawQuery
		if strings.HasPrefix(query, "action=login2") {
			r.ParseForm()
			if r.PostForm.Get("passwrd") != "secret" {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "SMFCookie10", Value: "session"})
			http.Redirect(w, r, "/index.php", http.StatusFound)
			return
		}

		if c, err := r.Cookie("SMFCookie10"); err != nil || c.Value != "session" {
			io.WriteString(w, `<html><body>Please login</body></html>`)
			return
		}

		switch {
		case query == "action=profile":
			io.WriteString(w, `<table><tr><td class="maintab_back">`+
				`<a href="/index.php?action=logout;sesc=abc">Logout</a></td></tr></table>`)

		case query == "action=post2":
			r.ParseForm()
			require.Equal(t, "abc", r.PostForm.Get("sc"))
			require.Equal(t, "12", r.PostForm.Get("topic"))
			require.Equal(t, "Sorteio #1", r.PostForm.Get("subject"))
			require.Equal(t, "Usu&#225;rio", r.PostForm.Get("message"))
			io.WriteString(w, `<div id="subject_10"></div><div id="subject_11"></div>`)

		case query == "action=post2;msg=11":
			r.ParseForm()
			require.Equal(t, "1", r.PostForm.Get("goback"))
			http.Redirect(w, r, "/index.php?topic=12.msg11#msg11", http.StatusFound)

		case query == "topic=12.msg11":
			io.WriteString(w, `<html></html>`)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClient(url, password string) *Client {
	return NewClient(config.ForumConfigs{
		BaseURL:  url,
		User:     "bot",
		Password: password,
		Timeout:  config.Duration{Duration: 5 * time.Second},
	})
}

func TestClient_PublishAndEdit(t *testing.T) {
	board := newBoard(t)
	defer board.Close()

	ctx := context.Background()
	client := newTestClient(board.URL, "secret")
	require.NoError(t, client.Login(ctx))

	postID, err := client.PublishPost(ctx, PostRequest{TopicID: 12, Subject: "Sorteio #1", Message: "Usuário"})
	require.NoError(t, err)
	require.Equal(t, int64(11), postID)

	postID, err = client.EditPost(ctx, EditRequest{PostID: 11, TopicID: 12, Subject: "[Aberto] Sorteio #1", Message: "x"})
	require.NoError(t, err)
	require.Equal(t, int64(11), postID)

	_, err = client.LookupTopic(ctx, 999)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.Unavailable})
}

func TestClient_LoginFailed(t *testing.T) {
	board := newBoard(t)
	defer board.Close()

	client := newTestClient(board.URL, "wrong")
	err := client.Login(context.Background())
	require.ErrorIs(t, err, errorx.Error{Code: errorx.Unauthenticated})

	_, err = client.PublishPost(context.Background(), PostRequest{TopicID: 12})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.Unauthenticated})
}
