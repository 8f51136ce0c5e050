// Утилитарные функции для опциональных полей моделей
package utils

// Ptr возвращает указатель на копию v (для nullable-колонок и json-полей).
func Ptr[T any](v T) *T {
	return &v
}

// Deref возвращает значение по указателю или def, если указатель nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
