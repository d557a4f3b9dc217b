// Package wire holds the JSON contract shared by the REST API, the realtime
// push server and the Go client. Field names follow the web client's forms
// (snake_case) except the dashboard payload, which keeps its camelCase shape.
package wire
