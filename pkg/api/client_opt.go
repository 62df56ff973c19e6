package api

import (
	"net/http"
)

type cookieOpt struct {
	cookies []*http.Cookie
}

// Cookies attaches a session to the request.
func Cookies(cookies ...*http.Cookie) *cookieOpt {
	return &cookieOpt{cookies: cookies}
}

func (opt *cookieOpt) Do(client defaultClient, req *http.Request) {
	for _, c := range opt.cookies {
		req.AddCookie(c)
	}
}
