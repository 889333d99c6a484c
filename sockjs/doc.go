// Package sockjs implements the server-side core of the SockJS
// protocol: wire framing, the session state machines for both
// request-based (XHR, XHRStreaming) and always-connected (WebSocket)
// transports, and the heartbeat/session-timeout timers that drive
// them. Host HTTP and WebSocket handlers live outside this package;
// it exposes the Request, Conn and Application seams a host wires up.
package sockjs
