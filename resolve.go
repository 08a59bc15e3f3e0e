package mediator

import (
	"reflect"
	"sort"
)

// typeMatches reports whether a registry key applies to a concrete message
// type: exact match, or the key is an interface the concrete type implements.
func typeMatches(key, concrete reflect.Type) bool {
	if key == concrete {
		return true
	}
	return key.Kind() == reflect.Interface && concrete.Implements(key)
}

// resolveBehaviors returns every behavior matching the request type, in
// ascending global position order.
//
// Resolution is memoized per exact request type for the mediator's lifetime.
// Duplicate computation on concurrent first access is harmless; both callers
// produce the same ordered slice and one wins the cache.
func (m *Mediator) resolveBehaviors(t reflect.Type) []*behaviorRegistration {
	if cached, ok := m.resolvedBehaviors.Load(t); ok {
		return cached.([]*behaviorRegistration)
	}

	var matched []*behaviorRegistration
	for _, key := range m.behaviorKeys {
		if typeMatches(key, t) {
			matched = append(matched, m.behaviors[key]...)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].position < matched[j].position
	})

	cached, _ := m.resolvedBehaviors.LoadOrStore(t, matched)
	return cached.([]*behaviorRegistration)
}

// resolveNotificationHandlers returns every handler matching the notification
// type: matched keys in first-registration order, handlers within a key in
// registration order. Memoized like resolveBehaviors.
func (m *Mediator) resolveNotificationHandlers(t reflect.Type) []*notificationRegistration {
	if cached, ok := m.resolvedNotifications.Load(t); ok {
		return cached.([]*notificationRegistration)
	}

	var matched []*notificationRegistration
	for _, key := range m.notificationKeys {
		if typeMatches(key, t) {
			matched = append(matched, m.notificationHandlers[key]...)
		}
	}

	cached, _ := m.resolvedNotifications.LoadOrStore(t, matched)
	return cached.([]*notificationRegistration)
}
