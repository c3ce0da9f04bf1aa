package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemButton(idx int) InlineButton {
	return InlineButton{Text: fmt.Sprintf("item %d", idx), Data: fmt.Sprintf("product_%d", idx)}
}

func navRow(kb InlineKeyboard) []InlineButton {
	if len(kb) == 0 {
		return nil
	}
	last := kb[len(kb)-1]
	for _, b := range last {
		if b.Data == "page_info" || b.Text == "◀️ Назад" || b.Text == "Вперёд ▶️" {
			return last
		}
	}
	return nil
}

func TestPaginationSinglePage(t *testing.T) {
	kb := paginationKeyboard(3, 0, 10, "products", itemButton)

	require.Len(t, kb, 3)
	assert.Nil(t, navRow(kb), "single page must not carry navigation")
}

func TestPaginationFirstPage(t *testing.T) {
	kb := paginationKeyboard(25, 0, 10, "products", itemButton)

	require.Len(t, kb, 11)
	assert.Equal(t, "product_0", kb[0][0].Data)
	assert.Equal(t, "product_9", kb[9][0].Data)

	nav := navRow(kb)
	require.Len(t, nav, 2)
	assert.Equal(t, "1/3", nav[0].Text)
	assert.Equal(t, "page_info", nav[0].Data)
	assert.Equal(t, "products_page_1", nav[1].Data)
}

func TestPaginationMiddlePage(t *testing.T) {
	kb := paginationKeyboard(25, 1, 10, "products", itemButton)

	nav := navRow(kb)
	require.Len(t, nav, 3)
	assert.Equal(t, "products_page_0", nav[0].Data)
	assert.Equal(t, "2/3", nav[1].Text)
	assert.Equal(t, "products_page_2", nav[2].Data)
}

func TestPaginationLastPage(t *testing.T) {
	kb := paginationKeyboard(25, 2, 10, "products", itemButton)

	// 5 leftover items plus navigation.
	require.Len(t, kb, 6)
	assert.Equal(t, "product_20", kb[0][0].Data)
	assert.Equal(t, "product_24", kb[4][0].Data)

	nav := navRow(kb)
	require.Len(t, nav, 2)
	assert.Equal(t, "products_page_1", nav[0].Data)
	assert.Equal(t, "3/3", nav[1].Text)
}

func TestPaginationExactMultiple(t *testing.T) {
	kb := paginationKeyboard(20, 1, 10, "clients", itemButton)

	nav := navRow(kb)
	require.Len(t, nav, 2, "last page of an exact multiple has no next button")
	assert.Equal(t, "clients_page_0", nav[0].Data)
	assert.Equal(t, "2/2", nav[1].Text)
}

func TestPaginationEmpty(t *testing.T) {
	kb := paginationKeyboard(0, 0, 10, "products", itemButton)
	assert.Empty(t, kb)
}
