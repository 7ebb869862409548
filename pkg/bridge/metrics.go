// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons recorded on notificationFailures.
const (
	failReasonClient = "client"
	failReasonLogin  = "login"
	failReasonJoin   = "join"
	failReasonSend   = "send"
)

var (
	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_matrix_notifications_sent_total",
		Help: "Notifications successfully delivered to Matrix, by event name.",
	}, []string{"event"})

	notificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_matrix_notification_failures_total",
		Help: "Notifications dropped on the floor, by failure stage.",
	}, []string{"reason"})
)
