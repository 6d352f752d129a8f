package service

import (
	"context"
	"encoding/json"
	"log"

	"sparke-core-be/internal/dto"
	"sparke-core-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process bus. Today the single concern is
// turning analysis completions into subject-level reindex jobs so the
// semantic index tracks fresh content.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	jobs      JobPublisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	jobs JobPublisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		jobs:      jobs,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnalysisCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Scheduling subject reindex for SubjectId: %s (document %s)", payload.SubjectId, payload.DocumentId)

	job := events.NewSubjectReindexJob(payload.SubjectId)
	if err := cs.jobs.Publish(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to publish SUBJECT_REINDEX job: %v", err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
