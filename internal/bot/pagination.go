package bot

import "fmt"

// paginationKeyboard builds an inline keyboard for one page out of total
// items: one button row per visible item plus a navigation row. The first
// page has no "previous" control, the last page has no "next" control, and a
// single-page result carries no page indicator at all.
func paginationKeyboard(total, page, perPage int, prefix string, button func(idx int) InlineButton) InlineKeyboard {
	var kb InlineKeyboard

	start := page * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	for i := start; i < end; i++ {
		kb = append(kb, []InlineButton{button(i)})
	}

	totalPages := (total + perPage - 1) / perPage

	var nav []InlineButton
	if page > 0 {
		nav = append(nav, InlineButton{Text: "◀️ Назад", Data: fmt.Sprintf("%s_page_%d", prefix, page-1)})
	}
	if totalPages > 1 {
		nav = append(nav, InlineButton{Text: fmt.Sprintf("%d/%d", page+1, totalPages), Data: "page_info"})
	}
	if page < totalPages-1 {
		nav = append(nav, InlineButton{Text: "Вперёд ▶️", Data: fmt.Sprintf("%s_page_%d", prefix, page+1)})
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}

	return kb
}
