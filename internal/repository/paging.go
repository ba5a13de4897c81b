package repository

import "math"

// Offset переводит страницу (с 1) в смещение строк.
// ok == false, если страница неположительна или смещение не помещается в int:
// такой страницы заведомо нет.
func Offset(page, limit int) (offset int, ok bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}
