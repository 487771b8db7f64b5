package realtime

import (
	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/service"
)

// Publisher turns domain change notifications into hub broadcasts.
type Publisher struct {
	hub *Hub
}

var _ service.Notifier = (*Publisher)(nil)

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

// WeightChanged is subscribed to the weight adapter.
func (p *Publisher) WeightChanged(weight float64) {
	p.hub.Broadcast(WeightMessage(weight))
}

func (p *Publisher) PendingListChanged(pending []domain.Transaction) {
	p.hub.Broadcast(PendingListMessage(pending))
}

func (p *Publisher) CompletedListChanged(date string, records []domain.CompletedRecord) {
	p.hub.Broadcast(CompletedListMessage(date, records))
}

func (p *Publisher) GateAlert(message string) {
	p.hub.Broadcast(GateAlertMessage(message))
}

func (p *Publisher) PermitAlert(id int64, exit bool) {
	p.hub.Broadcast(PermitAlertMessage(id, exit))
}

func (p *Publisher) PortChanged(result service.PortChange) {
	p.hub.Broadcast(PortChangeMessage(result))
}
