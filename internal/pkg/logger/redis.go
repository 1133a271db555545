package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

// RedisLoggerHook 记录 Redis 连接错误、命令错误和慢命令
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		cmdName := cmd.Name()
		fields := []any{
			log.String("command", cmdName),
			log.String("args", redactArgs(cmd)),
			log.Duration("latency", elapsed),
		}

		switch {
		case err == nil:
			if elapsed > redisSlowThreshold {
				log.WarnContext(ctx, "Redis Slow", fields...)
			}
		case errors.Is(err, redis.Nil), isIgnorableRedisErr(cmdName, err):
		default:
			log.ErrorContext(ctx, "Redis Error", append(fields, log.Any("err", err))...)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		if err != nil && !errors.Is(err, redis.Nil) && !isIgnorablePipelineErr(cmds) {
			log.ErrorContext(ctx, "Redis Pipeline Error",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", elapsed),
				log.Any("err", err))
		} else if elapsed > redisSlowThreshold {
			log.WarnContext(ctx, "Redis Pipeline Slow",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", elapsed))
		}
		return err
	}
}

func redactArgs(cmd redis.Cmder) string {
	switch cmd.Name() {
	case "auth", "hello":
		return "[PROTECTED]"
	case "eval", "evalsha":
		// 脚本正文太长，只保留 keys/args
		args := cmd.Args()
		if len(args) > 2 {
			return fmt.Sprint(args[2:])
		}
	}
	return fmt.Sprint(cmd.Args())
}

// isIgnorableRedisErr 客户端会自行处理的错误不记 ERROR
// evalsha 的 NOSCRIPT 由 Script.Run 回退到 eval；旧版本服务端不支持 CLIENT SETINFO
func isIgnorableRedisErr(cmdName string, err error) bool {
	msg := err.Error()
	switch {
	case msg == "ERR no such key":
		return true
	case cmdName == "evalsha" && strings.HasPrefix(msg, "NOSCRIPT"):
		return true
	case cmdName == "client" && strings.Contains(strings.ToLower(msg), "setinfo"):
		return true
	}
	return false
}

// isIgnorablePipelineErr 管道内所有失败命令都可忽略时返回 true
func isIgnorablePipelineErr(cmds []redis.Cmder) bool {
	var failed bool
	for _, cmd := range cmds {
		err := cmd.Err()
		if err == nil || errors.Is(err, redis.Nil) {
			continue
		}
		failed = true
		if !isIgnorableRedisErr(cmd.Name(), err) {
			return false
		}
	}
	return failed
}
