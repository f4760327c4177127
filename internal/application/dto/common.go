package dto

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageRequest limit/offset leídos del query string.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage acota Limit a [1, MaxPageLimit] y Offset a >= 0.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	p.Offset = max(p.Offset, 0)
}

// Page construye los metadatos de respuesta. HasMore es una estimación: una página llena
// indica que puede haber más filas.
func (p PageRequest) Page(returned int) PageResponse {
	return PageResponse{
		Limit:    p.Limit,
		Offset:   p.Offset,
		Returned: returned,
		HasMore:  returned == p.Limit,
	}
}

// PageResponse metadatos de página.
type PageResponse struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"has_more"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva la precondición que falló (p. ej. faltantes por línea).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
