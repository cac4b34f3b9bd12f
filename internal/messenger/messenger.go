package messenger

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

type MessageService interface {
	GetQueueUrl(item Item) (*string, error)
	SendMessage(item Item, body []byte) error
	PollMessages(item Item, messages chan *sqs.Message)
	DeleteMessage(item Item, message *sqs.Message) error
	GetQueueSize(item Item) (*int, error)
}

type Messenger struct {
	client *sqs.SQS

	mtx       sync.Mutex
	queueUrls map[Item]*string
}

type Item string

var (
	ItemSold         Item = "item-sold"
	ItemNotAvailable Item = "item-not-available"
	ItemGone         Item = "item-gone"
	OrderCancelled   Item = "order-cancelled"
)

func (i Item) queue() string {
	return fmt.Sprintf("%s-%s", config.Get().Index, i)
}

func NewMessenger(client *sqs.SQS) MessageService {
	return &Messenger{client: client, queueUrls: map[Item]*string{}}
}

func (m *Messenger) GetQueueUrl(item Item) (*string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if url, ok := m.queueUrls[item]; ok {
		return url, nil
	}

	result, err := m.client.GetQueueUrl(&sqs.GetQueueUrlInput{QueueName: aws.String(item.queue())})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to get queue url")
		return nil, err
	}

	m.queueUrls[item] = result.QueueUrl

	return result.QueueUrl, nil
}

func (m *Messenger) SendMessage(item Item, body []byte) error {
	queueUrl, err := m.GetQueueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.client.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    queueUrl,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to send message")
		return err
	}

	zap.L().With(zap.String("queue", item.queue())).Debug("[Queue] Published message")

	return nil
}

func (m *Messenger) PollMessages(item Item, messages chan *sqs.Message) {
	queueUrl, err := m.GetQueueUrl(item)
	if err != nil {
		return
	}

	for {
		output, err := m.client.ReceiveMessage(&sqs.ReceiveMessageInput{
			QueueUrl:            queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(20),
		})
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to receive messages")
			continue
		}

		for _, message := range output.Messages {
			messages <- message
		}
	}
}

func (m *Messenger) DeleteMessage(item Item, message *sqs.Message) error {
	queueUrl, err := m.GetQueueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.client.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: message.ReceiptHandle,
	})

	return err
}

func (m *Messenger) GetQueueSize(item Item) (*int, error) {
	queueUrl, err := m.GetQueueUrl(item)
	if err != nil {
		return nil, err
	}

	attributes, err := m.client.GetQueueAttributes(&sqs.GetQueueAttributesInput{
		QueueUrl:       queueUrl,
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
	})
	if err != nil {
		return nil, err
	}

	value, ok := attributes.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages]
	if !ok {
		return nil, fmt.Errorf("queue %s has no %s attribute", item.queue(), sqs.QueueAttributeNameApproximateNumberOfMessages)
	}

	size, err := strconv.Atoi(*value)
	if err != nil {
		return nil, err
	}

	return &size, nil
}
