package printer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	pkgjwt "github.com/jhoicas/farmacia-pos/pkg/jwt"
)

var _ ports.Printer = (*Agent)(nil)

// Agent adaptador para el agente de impresión que corre en la máquina del
// caixa (la impresora USB no es visible desde el servidor). Protocolo:
//
//	POST {base}/print {"printer": "...", "data": "<base64>"}
//	200 {"ok": true, "job_id": "..."} | 4xx/5xx {"ok": false, "error": "..."}
type Agent struct {
	baseURL    string
	printer    string
	secret     string
	issuer     string
	httpClient *http.Client
}

// NewAgent construye el adaptador. Con secret no vacío cada trabajo lleva un
// token Bearer de corta duración firmado con la misma clave de la API.
func NewAgent(baseURL, printer, secret, issuer string, timeout time.Duration) *Agent {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Agent{
		baseURL:    strings.TrimRight(baseURL, "/"),
		printer:    printer,
		secret:     secret,
		issuer:     issuer,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type agentRequest struct {
	Printer string `json:"printer"`
	Data    string `json:"data"`
}

func (a *Agent) Name() string {
	if a.printer == "" {
		return "agent"
	}
	return a.printer
}

// Print envía los bytes ESC/POS al agente.
func (a *Agent) Print(ctx context.Context, data []byte) (string, error) {
	body, err := json.Marshal(agentRequest{Printer: a.printer, Data: base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return "", fmt.Errorf("agente: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("agente: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.secret != "" {
		token, err := pkgjwt.Generate(a.secret, "printer-agent", a.Name(), a.issuer, 1)
		if err != nil {
			return "", fmt.Errorf("agente: firmar token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: agente: %v", domain.ErrPrinterUnavailable, ctx.Err())
		}
		return "", fmt.Errorf("%w: agente: %v", domain.ErrPrinterUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err != nil {
		return "", fmt.Errorf("agente: leer respuesta: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("%w: agente HTTP %d: %s", domain.ErrPrinterUnavailable, resp.StatusCode, msg)
	}
	if ok := gjson.GetBytes(raw, "ok"); ok.Exists() && !ok.Bool() {
		return "", fmt.Errorf("%w: agente: %s", domain.ErrPrinterUnavailable, gjson.GetBytes(raw, "error").String())
	}
	job := gjson.GetBytes(raw, "job_id")
	if !job.Exists() {
		// versiones anteriores del agente anidaban el id
		job = gjson.GetBytes(raw, "job.id")
	}
	return job.String(), nil
}
