// Package ping contains handlers for pinging the server
package ping

import "net/http"

func HandlePing(w http.ResponseWriter, r *http.Request) {}
