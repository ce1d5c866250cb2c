package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendWelcomeEmailTaskName = "email:welcome"
	EmailQueueName           = "email"
)

type SendWelcomeEmail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewSendWelcomeEmailTask(email string, name string) (*asynq.Task, error) {
	var data SendWelcomeEmail
	data.Email = email
	data.Name = name

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendWelcomeEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(EmailQueueName),
	), nil
}
