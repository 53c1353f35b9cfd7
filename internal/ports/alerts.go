package ports

import (
	"context"

	"dam-inspection-system/internal/domain"
)

// AlertPublisher вихідна межа для операційних сповіщень. Реалізації не
// повинні блокуватися на мережевому вводі-виводі.
type AlertPublisher interface {
	PublishSeismicAlert(ctx context.Context, alert domain.SeismicAlert) error
	PublishCriticalFindings(ctx context.Context, alert domain.CriticalFindingsAlert) error
}

// MultiPublisher розсилає сповіщення всім підписаним видавцям
type MultiPublisher []AlertPublisher

func (m MultiPublisher) PublishSeismicAlert(ctx context.Context, alert domain.SeismicAlert) error {
	var firstErr error
	for _, p := range m {
		if err := p.PublishSeismicAlert(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiPublisher) PublishCriticalFindings(ctx context.Context, alert domain.CriticalFindingsAlert) error {
	var firstErr error
	for _, p := range m {
		if err := p.PublishCriticalFindings(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
