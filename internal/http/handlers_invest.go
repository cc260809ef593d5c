package http

import (
	"errors"
	"net/http"

	"zaman/internal/invest"
)

type simulateRequest struct {
	Amount     int64             `json:"amount"`
	Instrument invest.Instrument `json:"instrument"`
}

func (s *Server) handleSimulateInvestment(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	result, err := s.deps.Simulator.Simulate(req.Amount, req.Instrument)
	switch {
	case errors.Is(err, invest.ErrInvalidAmount):
		UnprocessableEntityError("Сумма инвестиции должна быть больше нуля.").Write(w)
		return
	case errors.Is(err, invest.ErrUnknownInstrument):
		UnprocessableEntityError("Неизвестный инструмент.").Write(w)
		return
	case err != nil:
		InternalServerError("internal error").Write(w)
		return
	}

	s.appMetrics.simulationsRun.Add(1)
	s.track(r, "invest_simulated", map[string]any{"instrument": result.Instrument, "amount": result.Amount})
	OK(result).Write(w)
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"instruments": invest.Instruments(),
		"wakalaRate":  invest.WakalaRate,
	}).Write(w)
}
