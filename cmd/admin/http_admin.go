package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	adminRequest(http.MethodGet, *baseURL, "/admin/v1/state", nil, 5*time.Second)
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	adminRequest(http.MethodPost, *baseURL, "/admin/v1/snapshot", nil, 10*time.Second)
}

// actCmd submits one action. The JSON body comes from -json or stdin.
func actCmd(args []string) {
	fs := flag.NewFlagSet("act", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	raw := fs.String("json", "", `action JSON, e.g. {"id":"I1","type":"INTERACT","pos":[0,1,0],"facing":"SOUTH"}`)
	_ = fs.Parse(args)

	body := []byte(strings.TrimSpace(*raw))
	if len(body) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(1, "read stdin:", err)
		}
		body = bytes.TrimSpace(b)
	}
	adminRequest(http.MethodPost, *baseURL, "/admin/v1/actions", body, 10*time.Second)
}

func adminRequest(method, baseURL, path string, body []byte, timeout time.Duration) {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		fail(2, "request:", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cl := &http.Client{Timeout: timeout}
	resp, err := cl.Do(req)
	if err != nil {
		fail(1, "request:", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
