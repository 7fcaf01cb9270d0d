// Package http provides HTTP handlers and middleware for the visit desk API.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness probe returning {"status":"ok"}.
//   - GET /departments: the department codes in display order.
//   - GET /faculty[?department=CS]: the roster, optionally filtered by department.
//   - POST /requests: submits the visitor form. Body:
//     {"visitorName","mobile","dept","facultyName","reason"}. Responds 201 with the
//     stored pending request, or 422 with per-field messages.
//   - GET /requests[?faculty=name]: every request, or those addressed to one
//     faculty member.
//   - POST /sessions: the faculty gate. Body: {"name","phone","code"}. Responds with
//     {"token","expires_at","faculty"} and also surfaces the token via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the presented token.
//   - GET /dashboard: requires a session; the signed-in faculty member's requests
//     grouped into pending, approved and other with counts.
//   - PUT /requests/{id}/status: requires a session; body {"status"}. Approving a
//     request opens its chat.
//   - GET /chats/{id}[?as=participant]: the chat of an approved request. With `as`
//     the response also carries the counterpart used by the identity toggle.
//   - POST /chats/{id}/messages: body {"sender","text"}; appends a message.
//   - GET /metrics: Prometheus exposition when a metrics handler is configured.
//
// Session tokens are read from `Authorization: Bearer`, `X-Session-Token` or the
// `session_token` cookie, in that order. Request/response DTOs live alongside
// their handlers.
package http
