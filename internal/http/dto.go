package http

import (
	"time"

	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/persistence"
)

type facultyDTO struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"dept"`
}

func toFacultyDTOs(faculty []persistence.Faculty) []facultyDTO {
	out := make([]facultyDTO, 0, len(faculty))
	for _, member := range faculty {
		out = append(out, facultyDTO{ID: member.ID, Name: member.Name, Department: string(member.Department)})
	}
	return out
}

type requestDTO struct {
	ID          string `json:"id"`
	VisitorName string `json:"visitorName"`
	Mobile      string `json:"mobile"`
	FacultyName string `json:"facultyName"`
	Department  string `json:"dept"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

func toRequestDTO(request persistence.VisitorRequest) requestDTO {
	return requestDTO{
		ID:          request.ID,
		VisitorName: request.VisitorName,
		Mobile:      request.Mobile,
		FacultyName: request.FacultyName,
		Department:  string(request.Department),
		Reason:      request.Reason,
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRequestDTOs(requests []persistence.VisitorRequest) []requestDTO {
	out := make([]requestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestDTO(request))
	}
	return out
}

type messageDTO struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

type chatDTO struct {
	RequestID   string       `json:"requestId"`
	FacultyName string       `json:"facultyName"`
	VisitorName string       `json:"visitorName"`
	Messages    []messageDTO `json:"messages"`
}

func toChatDTO(chat persistence.Chat) chatDTO {
	messages := make([]messageDTO, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		messages = append(messages, messageDTO{Sender: msg.Sender, Text: msg.Text, Time: msg.Time})
	}
	return chatDTO{
		RequestID:   chat.RequestID,
		FacultyName: chat.FacultyName,
		VisitorName: chat.VisitorName,
		Messages:    messages,
	}
}

type principalDTO struct {
	FacultyName string `json:"facultyName"`
	Department  string `json:"dept"`
}

func toPrincipalDTO(principal application.Principal) principalDTO {
	return principalDTO{FacultyName: principal.FacultyName, Department: string(principal.Department)}
}
