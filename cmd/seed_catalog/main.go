// seed_catalog genera el script SQL inicial de bodegas y productos a partir de un CSV exportado
// del sistema anterior (separador ';', UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv] [company_id]
// Columnas: tipo;codigo;nombre;unidad;costo   (tipo = BODEGA | PRODUCTO)
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type warehouseRow struct {
	name    string
	address string
}

type productRow struct {
	sku  string
	name string
	unit string
	cost decimal.Decimal
}

type catalog struct {
	warehouses []warehouseRow
	products   []productRow
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	companyID := ""
	if len(os.Args) > 2 {
		companyID = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	cat, err := parseCatalog(decodeLatin1(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	writeSQL(w, cat, companyID)
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d bodegas, %d productos\n", outPath, len(cat.warehouses), len(cat.products))
}

// decodeLatin1 convierte a UTF-8 cuando el archivo no es UTF-8 válido (exportaciones de Excel en Windows).
func decodeLatin1(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func parseCatalog(r io.Reader) (*catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cat := &catalog{}
	seenSKU := map[string]bool{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(rec[0]))
		if line == 1 && kind == "TIPO" {
			continue
		}
		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		switch kind {
		case "BODEGA":
			if field(2) == "" {
				return nil, fmt.Errorf("línea %d: bodega sin nombre", line)
			}
			cat.warehouses = append(cat.warehouses, warehouseRow{name: field(2), address: field(3)})
		case "PRODUCTO":
			sku := field(1)
			if sku == "" || field(2) == "" {
				return nil, fmt.Errorf("línea %d: producto sin código o nombre", line)
			}
			if seenSKU[sku] {
				return nil, fmt.Errorf("línea %d: código %s repetido", line, sku)
			}
			seenSKU[sku] = true
			cost := decimal.Zero
			if s := strings.ReplaceAll(field(4), ",", "."); s != "" {
				c, err := decimal.NewFromString(s)
				if err != nil || c.IsNegative() {
					return nil, fmt.Errorf("línea %d: costo inválido %q", line, field(4))
				}
				cost = c
			}
			unit := field(3)
			if unit == "" {
				unit = "UND"
			}
			cat.products = append(cat.products, productRow{sku: sku, name: field(2), unit: unit, cost: cost})
		default:
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", line, rec[0])
		}
	}
	sort.Slice(cat.products, func(i, j int) bool { return cat.products[i].sku < cat.products[j].sku })
	return cat, nil
}

func writeSQL(w io.Writer, cat *catalog, companyID string) {
	fmt.Fprintf(w, "-- Catálogo inicial de bodegas y productos\n")
	fmt.Fprintf(w, "-- Generado por cmd/seed_catalog\n\n")

	if len(cat.warehouses) > 0 {
		fmt.Fprintf(w, "-- 1. Bodegas\n")
		fmt.Fprintf(w, "INSERT INTO warehouses (company_id, name, address) VALUES\n")
		for i, wh := range cat.warehouses {
			fmt.Fprintf(w, "  ('%s', '%s', '%s')%s\n", escapeSQL(companyID), escapeSQL(wh.name), escapeSQL(wh.address), sep(i, len(cat.warehouses)))
		}
		fmt.Fprintf(w, "ON CONFLICT (company_id, name) DO UPDATE SET address = EXCLUDED.address;\n\n")
	}

	if len(cat.products) > 0 {
		fmt.Fprintf(w, "-- 2. Productos (stock en cero: las existencias entran por el ledger)\n")
		fmt.Fprintf(w, "INSERT INTO products (company_id, sku, name, unit_measure, cost) VALUES\n")
		for i, p := range cat.products {
			fmt.Fprintf(w, "  ('%s', '%s', '%s', '%s', %s)%s\n",
				escapeSQL(companyID), escapeSQL(p.sku), escapeSQL(p.name), escapeSQL(p.unit), p.cost.String(), sep(i, len(cat.products)))
		}
		fmt.Fprintf(w, "ON CONFLICT (company_id, sku) DO UPDATE SET name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure, cost = EXCLUDED.cost;\n")
	}
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
