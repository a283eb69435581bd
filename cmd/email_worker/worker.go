package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/helpers"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/mailer"
	mailtpl "github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/mailer/templates"
)

var errUnsendable = errors.New("job has no template and no body")

type worker struct {
	sender  mailer.Sender
	log     logrus.FieldLogger
	timeout time.Duration
}

// compose turns a queued job into subject, text and html.
func compose(job *mailer.EmailJob) (string, string, string, error) {
	helpers.NormalizeEmailJob(job)
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", errUnsendable
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if !helpers.KnownTemplate(job.Template) {
		return "", "", "", fmt.Errorf("unknown template %q", job.Template)
	}
	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}

// handle acks on success. Malformed jobs are dropped; a failed send is
// requeued once.
func (w *worker) handle(ctx context.Context, d amqp.Delivery) {
	log := w.log.WithField("delivery_tag", d.DeliveryTag)

	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.WithError(err).Warn("bad message")
		_ = d.Nack(false, false)
		return
	}
	log = log.WithFields(logrus.Fields{"to": job.To, "template": job.Template})
	if job.To == "" {
		log.Warn("message without recipient")
		_ = d.Nack(false, false)
		return
	}

	subject, text, html, err := compose(&job)
	if err != nil {
		log.WithError(err).Warn("cannot compose email")
		_ = d.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		helpers.LogError(log, "send failed", err, logrus.Fields{"redelivered": d.Redelivered})
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
	helpers.LogInfo(log, "email sent", nil)
}
