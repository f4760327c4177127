package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog_BodegasYProductos(t *testing.T) {
	in := "tipo;codigo;nombre;unidad;costo\n" +
		"BODEGA;;Principal;Calle 1\n" +
		"PRODUCTO;B-2;Tornillo 1/4;UND;120,50\n" +
		"# comentario\n" +
		"producto;A-1;Arandela;;80\n"
	cat, err := parseCatalog(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, cat.warehouses, 1)
	assert.Equal(t, "Principal", cat.warehouses[0].name)
	require.Len(t, cat.products, 2)
	assert.Equal(t, "A-1", cat.products[0].sku, "ordenados por código")
	assert.Equal(t, "UND", cat.products[0].unit, "unidad por defecto")
	assert.Equal(t, "120.5", cat.products[1].cost.String())
}

func TestParseCatalog_CodigoRepetido(t *testing.T) {
	in := "PRODUCTO;A-1;Uno;UND;1\nPRODUCTO;A-1;Dos;UND;2\n"
	_, err := parseCatalog(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseCatalog_CostoNegativo(t *testing.T) {
	_, err := parseCatalog(strings.NewReader("PRODUCTO;A-1;Uno;UND;-3\n"))
	assert.Error(t, err)
}

func TestDecodeLatin1_ConvierteTildes(t *testing.T) {
	// "Café" en ISO-8859-1
	raw := []byte{'P', 'R', 'O', 'D', 'U', 'C', 'T', 'O', ';', 'C', '1', ';', 'C', 'a', 'f', 0xE9, '\n'}
	cat, err := parseCatalog(decodeLatin1(raw))
	require.NoError(t, err)
	require.Len(t, cat.products, 1)
	assert.Equal(t, "Café", cat.products[0].name)
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	cat := &catalog{warehouses: []warehouseRow{{name: "D'Luca"}}}
	var buf bytes.Buffer
	writeSQL(&buf, cat, "c1")
	assert.Contains(t, buf.String(), "'D''Luca'")
	assert.NotContains(t, buf.String(), "INSERT INTO products")
}
