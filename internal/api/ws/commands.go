package ws

import (
	"context"
	"encoding/json"
	"errors"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/realtime"
	"weighbridge-server/internal/service"
)

func (g *Gateway) registerGateEntry(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p gateEntryPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	_, err := g.weighment.RegisterGateEntry(ctx, service.GateEntry{
		VehicleNumber: p.VehicleNumber,
		PartyName:     p.PartyName,
		Item:          p.Item,
		Kind:          p.TransactionType,
	})
	return err
}

func (g *Gateway) authorizeEntry(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	return g.withID(payload, func(id int64) error { return g.weighment.AuthorizeEntry(ctx, id) })
}

func (g *Gateway) authorizeExit(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	return g.withID(payload, func(id int64) error { return g.weighment.AuthorizeExit(ctx, id) })
}

func (g *Gateway) confirmOnScale(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	return g.withID(payload, func(id int64) error { return g.weighment.ConfirmOnScale(ctx, id) })
}

func (g *Gateway) withID(payload json.RawMessage, fn func(id int64) error) error {
	var p idPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	id, err := requireID(p.ID)
	if err != nil {
		return err
	}
	return fn(id)
}

func (g *Gateway) captureFirstWeight(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p firstCapturePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	id, err := requireID(p.ID)
	if err != nil {
		return err
	}
	return g.weighment.CaptureFirstWeight(ctx, service.FirstCapture{
		ID:        id,
		GrossWt:   p.GrossWt,
		TareWt:    p.TareWt,
		ImageData: p.ImageData,
	})
}

// captureSecondWeight reports persistence failures to the requesting session,
// since the operator would otherwise believe the weighment was saved.
func (g *Gateway) captureSecondWeight(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p secondCapturePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	id, err := requireID(p.ID)
	if err != nil {
		return err
	}
	_, err = g.weighment.CaptureSecondWeight(ctx, service.SecondCapture{
		ID:              id,
		GrossWt:         p.GrossWt,
		TareWt:          p.TareWt,
		ImageData:       p.ImageData,
		TransporterName: p.TransporterName,
		LRNumber:        p.LRBiltyNo,
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
		c.Send(realtime.CommandErrorMessage("CAPTURE_SECOND_WEIGHT", err))
	}
	return err
}

func (g *Gateway) updatePrintDetails(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p printDetailsPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	id, err := requireID(p.ID)
	if err != nil {
		return err
	}
	return g.weighment.UpdatePrintDetails(ctx, id, p.TransporterName, p.LRBiltyNo)
}

func (g *Gateway) adminAction(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p adminActionPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	result := g.admin.ExecuteAction(ctx, p.Password, p.Action)
	logger.WithSession(c.ID()).Info("Admin action handled", "action", p.Action, "success", result.Success)
	c.Send(realtime.AdminResultMessage(result))
	return nil
}

func (g *Gateway) getCompletedForDate(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p datePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	return g.weighment.PublishCompleted(ctx, p.Date)
}

func (g *Gateway) deleteAllCompleted(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p datePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	deleted, err := g.weighment.DeleteCompletedForDate(ctx, p.Date)
	if err != nil {
		return err
	}
	logger.WithSession(c.ID()).Warn("Finalized records deleted by operator", "date", p.Date, "count", deleted)
	return nil
}

func (g *Gateway) searchBySerial(ctx context.Context, c *realtime.Client, payload json.RawMessage) error {
	var p searchPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	res, err := g.weighment.SearchBySerial(ctx, string(p.Serial))
	if err != nil {
		return err
	}
	c.Send(realtime.SearchResultMessage(res))
	return nil
}
