// Package api implementa el cliente HTTP hacia censusd.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/pkg/api"
)

// Client representa el cliente HTTP del servicio de censos.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient crea un nuevo cliente apuntando a baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken fija el token de acceso para las siguientes peticiones.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login autentica la clave de API y devuelve un token de acceso.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// ConsultarPorUbigeo consulta un endpoint de censo por código de ubigeo.
func (c *Client) ConsultarPorUbigeo(ctx context.Context, endpoint, ubigeo string) ([]models.Fila, error) {
	ruta := endpoint + "?ubigeo=" + url.QueryEscape(ubigeo)

	var resp api.RespuestaCenso
	if err := c.doRequest(ctx, http.MethodGet, ruta, nil, &resp); err != nil {
		return nil, fmt.Errorf("census query failed: %w", err)
	}
	return filasDesdeCrudo(resp.Data), nil
}

// ConsultarPorCodigos consulta un endpoint de censo por lote de códigos de
// centros poblados (POST {codigos: [...]}).
func (c *Client) ConsultarPorCodigos(ctx context.Context, endpoint string, codigos []string) ([]models.Fila, error) {
	var resp api.RespuestaCenso
	if err := c.doRequest(ctx, http.MethodPost, endpoint, api.ConsultaCodigos{Codigos: codigos}, &resp); err != nil {
		return nil, fmt.Errorf("census batch query failed: %w", err)
	}
	return filasDesdeCrudo(resp.Data), nil
}

// ListarCentrosPoblados lista los centros poblados de un distrito.
func (c *Client) ListarCentrosPoblados(ctx context.Context, ubigeo string) ([]api.CentroPoblado, error) {
	ruta := "/api/v1/centros-poblados/listar?ubigeo=" + url.QueryEscape(ubigeo)

	var resp api.RespuestaCentrosPoblados
	if err := c.doRequest(ctx, http.MethodGet, ruta, nil, &resp); err != nil {
		return nil, fmt.Errorf("populated places query failed: %w", err)
	}
	return resp.Data, nil
}

// doRequest ejecuta una petición HTTP contra el servicio.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	destino := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, destino, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// filasDesdeCrudo convierte las filas del cable al tipo interno.
func filasDesdeCrudo(crudo []map[string]any) []models.Fila {
	filas := make([]models.Fila, 0, len(crudo))
	for _, m := range crudo {
		filas = append(filas, models.Fila(m))
	}
	return filas
}
